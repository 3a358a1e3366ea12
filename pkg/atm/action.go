package atm

import "strconv"

// Action 对 ATM 的一次操作：SwipeCard 或 PressKey
type Action interface {
	isAction()
	String() string
}

// SwipeCard 刷卡，携带本次会话正确 PIN 的哈希
type SwipeCard struct {
	PinHash uint64
}

// PressKey 按下一个键
type PressKey struct {
	Key Key
}

func (SwipeCard) isAction() {}
func (PressKey) isAction()  {}

func (s SwipeCard) String() string {
	return "SwipeCard(" + strconv.FormatUint(s.PinHash, 10) + ")"
}

func (p PressKey) String() string {
	return "PressKey(" + p.Key.String() + ")"
}
