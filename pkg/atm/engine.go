// Package atm 实现 ATM 的确定性状态转换：刷卡、PIN 校验与取款。
//
// NextState 是纯函数，不持有共享可变状态，不同会话各自持有 State 副本即可并行运行。
package atm

// NextState 根据当前状态与操作计算新状态。
// 对任意 (state, action) 都有定义，不会修改入参，返回的寄存器不与入参共享底层数组。
func NextState(s State, a Action) State {
	switch act := a.(type) {
	case SwipeCard:
		return swipeCard(s, act)
	case PressKey:
		return pressKey(s, act.Key)
	default:
		return s.Clone()
	}
}

// swipeCard 仅在 Waiting 时接受刷卡
func swipeCard(s State, act SwipeCard) State {
	switch s.AuthOrDefault().(type) {
	case Waiting:
		return State{
			CashInside: s.CashInside,
			Auth:       Authenticating{PinHash: act.PinHash},
			Register:   []Key{},
		}
	case Authenticating, Authenticated:
		return s.Clone()
	default:
		return s.Clone()
	}
}

func pressKey(s State, key Key) State {
	switch auth := s.AuthOrDefault().(type) {
	case Waiting:
		return s.Clone()
	case Authenticating:
		if key == KeyEnter {
			return verifyPin(s, auth.PinHash)
		}
		return appendKey(s, key)
	case Authenticated:
		if key == KeyEnter {
			return withdraw(s)
		}
		return appendKey(s, key)
	default:
		return s.Clone()
	}
}

// appendKey 追加数字键；非数字键不进入寄存器
func appendKey(s State, key Key) State {
	next := s.Clone()
	if key.IsDigit() {
		next.Register = append(next.Register, key)
	}
	return next
}

// verifyPin PIN 正确进入 Authenticated，否则退卡回到 Waiting
func verifyPin(s State, expected uint64) State {
	var auth AuthState = Waiting{}
	if HashKeys(s.Register) == expected {
		auth = Authenticated{}
	}
	return State{
		CashInside: s.CashInside,
		Auth:       auth,
		Register:   []Key{},
	}
}

// withdraw 金额不超过机内现金时扣减，否则不扣减；两种情况都回到 Waiting
func withdraw(s State) State {
	cash := s.CashInside
	if amount := DecodeAmount(s.Register); amount <= cash {
		cash -= amount
	}
	return State{
		CashInside: cash,
		Auth:       Waiting{},
		Register:   []Key{},
	}
}
