package atm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func diffState(want, got State) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

var pin1234 = []Key{KeyOne, KeyTwo, KeyThree, KeyFour}

func TestNextState_Table(t *testing.T) {
	pinHash := HashKeys(pin1234)

	tests := []struct {
		name   string
		start  State
		action Action
		want   State
	}{
		{
			name:   "刷卡开始认证",
			start:  State{CashInside: 10, Auth: Waiting{}},
			action: SwipeCard{PinHash: 1234},
			want:   State{CashInside: 10, Auth: Authenticating{PinHash: 1234}},
		},
		{
			name:   "认证中再次刷卡无效",
			start:  State{CashInside: 10, Auth: Authenticating{PinHash: 1234}},
			action: SwipeCard{PinHash: 1234},
			want:   State{CashInside: 10, Auth: Authenticating{PinHash: 1234}},
		},
		{
			name:   "认证中再次刷卡保留寄存器",
			start:  State{CashInside: 10, Auth: Authenticating{PinHash: 1234}, Register: []Key{KeyOne, KeyThree}},
			action: SwipeCard{PinHash: 99},
			want:   State{CashInside: 10, Auth: Authenticating{PinHash: 1234}, Register: []Key{KeyOne, KeyThree}},
		},
		{
			name:   "已认证时刷卡无效",
			start:  State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyTwo}},
			action: SwipeCard{PinHash: 1},
			want:   State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyTwo}},
		},
		{
			name:   "刷卡前按键被忽略",
			start:  State{CashInside: 10, Auth: Waiting{}},
			action: PressKey{Key: KeyOne},
			want:   State{CashInside: 10, Auth: Waiting{}},
		},
		{
			name:   "输入 PIN 第一位",
			start:  State{CashInside: 10, Auth: Authenticating{PinHash: 1234}},
			action: PressKey{Key: KeyOne},
			want:   State{CashInside: 10, Auth: Authenticating{PinHash: 1234}, Register: []Key{KeyOne}},
		},
		{
			name:   "输入 PIN 第二位",
			start:  State{CashInside: 10, Auth: Authenticating{PinHash: 1234}, Register: []Key{KeyOne}},
			action: PressKey{Key: KeyTwo},
			want:   State{CashInside: 10, Auth: Authenticating{PinHash: 1234}, Register: []Key{KeyOne, KeyTwo}},
		},
		{
			name:   "PIN 错误退卡",
			start:  State{CashInside: 10, Auth: Authenticating{PinHash: pinHash}, Register: []Key{KeyThree, KeyThree, KeyThree, KeyThree}},
			action: PressKey{Key: KeyEnter},
			want:   State{CashInside: 10, Auth: Waiting{}},
		},
		{
			name:   "PIN 正确",
			start:  State{CashInside: 10, Auth: Authenticating{PinHash: pinHash}, Register: pin1234},
			action: PressKey{Key: KeyEnter},
			want:   State{CashInside: 10, Auth: Authenticated{}},
		},
		{
			name:   "输入取款金额",
			start:  State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne}},
			action: PressKey{Key: KeyFour},
			want:   State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne, KeyFour}},
		},
		{
			name:   "取款超出机内现金",
			start:  State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne, KeyFour}},
			action: PressKey{Key: KeyEnter},
			want:   State{CashInside: 10, Auth: Waiting{}},
		},
		{
			name:   "正常取款",
			start:  State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne}},
			action: PressKey{Key: KeyEnter},
			want:   State{CashInside: 9, Auth: Waiting{}},
		},
		{
			name:   "取光机内现金",
			start:  State{CashInside: 12, Auth: Authenticated{}, Register: []Key{KeyOne, KeyTwo}},
			action: PressKey{Key: KeyEnter},
			want:   State{CashInside: 0, Auth: Waiting{}},
		},
		{
			name:   "空寄存器取款金额为 0",
			start:  State{CashInside: 10, Auth: Authenticated{}},
			action: PressKey{Key: KeyEnter},
			want:   State{CashInside: 10, Auth: Waiting{}},
		},
		{
			name:   "零值状态视为 Waiting",
			start:  State{CashInside: 3},
			action: SwipeCard{PinHash: 7},
			want:   State{CashInside: 3, Auth: Authenticating{PinHash: 7}},
		},
		{
			name:   "未知按键不进入寄存器",
			start:  State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne}},
			action: PressKey{Key: Key(0)},
			want:   State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne}},
		},
		{
			name:   "nil 操作不改变状态",
			start:  State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne}},
			action: nil,
			want:   State{CashInside: 10, Auth: Authenticated{}, Register: []Key{KeyOne}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextState(tt.start, tt.action)
			if d := diffState(tt.want, got); d != "" {
				t.Errorf("NextState(%v, %v) mismatch (-want +got):\n%s", tt.start, tt.action, d)
			}
		})
	}
}

func TestNextState_Scenario(t *testing.T) {
	pinHash := HashKeys(pin1234)
	s := New(10)

	steps := []struct {
		action Action
		want   State
	}{
		{SwipeCard{PinHash: pinHash}, State{10, Authenticating{pinHash}, nil}},
		{PressKey{KeyOne}, State{10, Authenticating{pinHash}, []Key{KeyOne}}},
		{PressKey{KeyTwo}, State{10, Authenticating{pinHash}, []Key{KeyOne, KeyTwo}}},
		{PressKey{KeyThree}, State{10, Authenticating{pinHash}, []Key{KeyOne, KeyTwo, KeyThree}}},
		{PressKey{KeyFour}, State{10, Authenticating{pinHash}, pin1234}},
		{PressKey{KeyEnter}, State{10, Authenticated{}, nil}},
		{PressKey{KeyOne}, State{10, Authenticated{}, []Key{KeyOne}}},
		{PressKey{KeyEnter}, State{9, Waiting{}, nil}},
	}

	for i, step := range steps {
		s = NextState(s, step.action)
		if d := diffState(step.want, s); d != "" {
			t.Fatalf("第 %d 步 %v 后状态错误 (-want +got):\n%s", i, step.action, d)
		}
	}
}

func TestNextState_OverLimitScenario(t *testing.T) {
	s := State{CashInside: 10, Auth: Authenticated{}}
	s = NextState(s, PressKey{KeyOne})
	s = NextState(s, PressKey{KeyFour})
	s = NextState(s, PressKey{KeyEnter})

	if d := diffState(State{CashInside: 10, Auth: Waiting{}}, s); d != "" {
		t.Errorf("超额取款后状态错误 (-want +got):\n%s", d)
	}
}

func TestNextState_DoesNotMutateInput(t *testing.T) {
	reg := make([]Key, 1, 8)
	reg[0] = KeyOne
	start := State{CashInside: 10, Auth: Authenticated{}, Register: reg}

	a := NextState(start, PressKey{KeyTwo})
	b := NextState(start, PressKey{KeyThree})

	if len(start.Register) != 1 || start.Register[0] != KeyOne {
		t.Errorf("入参寄存器被修改: %v", start.Register)
	}
	if a.Register[1] != KeyTwo {
		t.Errorf("a 的寄存器被后续转换覆盖: %v", a.Register)
	}
	if b.Register[1] != KeyThree {
		t.Errorf("b 的寄存器错误: %v", b.Register)
	}
}

// allStates 枚举一组代表性状态
func allStates() []State {
	regs := [][]Key{nil, {KeyOne}, {KeyFour, KeyTwo}, pin1234}
	auths := []AuthState{Waiting{}, Authenticating{PinHash: HashKeys(pin1234)}, Authenticating{PinHash: 42}, Authenticated{}}
	var states []State
	for _, cash := range []uint64{0, 1, 10, 5000} {
		for _, auth := range auths {
			for _, reg := range regs {
				states = append(states, State{CashInside: cash, Auth: auth, Register: reg})
			}
		}
	}
	return states
}

var allKeys = []Key{KeyOne, KeyTwo, KeyThree, KeyFour, KeyEnter}

func TestProperty_WaitingIgnoresKeys(t *testing.T) {
	for _, s := range allStates() {
		if _, ok := s.Auth.(Waiting); !ok {
			continue
		}
		for _, k := range allKeys {
			if got := NextState(s, PressKey{k}); !got.Equal(s) {
				t.Errorf("Waiting 状态按 %v 后变化: %v -> %v", k, s, got)
			}
		}
	}
}

func TestProperty_SwipeOnlyFromWaiting(t *testing.T) {
	for _, s := range allStates() {
		got := NextState(s, SwipeCard{PinHash: 77})
		if _, waiting := s.Auth.(Waiting); waiting {
			want := State{CashInside: s.CashInside, Auth: Authenticating{PinHash: 77}}
			if !got.Equal(want) {
				t.Errorf("Waiting 刷卡结果错误: got %v, want %v", got, want)
			}
			continue
		}
		if !got.Equal(s) {
			t.Errorf("非 Waiting 刷卡应无变化: %v -> %v", s, got)
		}
	}
}

func TestProperty_RegisterGrowth(t *testing.T) {
	for _, s := range allStates() {
		if _, waiting := s.Auth.(Waiting); waiting {
			continue
		}
		for _, k := range allKeys {
			got := NextState(s, PressKey{k})
			if k == KeyEnter {
				if len(got.Register) != 0 {
					t.Errorf("Enter 后寄存器应为空: %v", got)
				}
				if _, ok := got.Auth.(Authenticating); ok {
					t.Errorf("Enter 后不应仍在认证中: %v", got)
				}
				continue
			}
			if len(got.Register) != len(s.Register)+1 {
				t.Errorf("寄存器长度应加一: %v -> %v", s, got)
			}
			if got.Register[len(got.Register)-1] != k {
				t.Errorf("最后一位应为 %v: %v", k, got)
			}
		}
	}
}

func TestProperty_PinRoundTrip(t *testing.T) {
	pins := [][]Key{
		{KeyOne},
		{KeyFour, KeyFour},
		pin1234,
		{KeyTwo, KeyThree, KeyOne, KeyFour, KeyTwo, KeyTwo},
	}

	for _, pin := range pins {
		s := NextState(New(100), SwipeCard{PinHash: HashKeys(pin)})
		for _, k := range pin {
			s = NextState(s, PressKey{k})
		}
		s = NextState(s, PressKey{KeyEnter})

		if d := diffState(State{CashInside: 100, Auth: Authenticated{}}, s); d != "" {
			t.Errorf("PIN %v 往返失败 (-want +got):\n%s", pin, d)
		}
	}
}

func TestProperty_WrongPin(t *testing.T) {
	guesses := [][]Key{
		nil,
		{KeyOne},
		{KeyOne, KeyTwo, KeyThree},
		{KeyFour, KeyThree, KeyTwo, KeyOne},
		{KeyOne, KeyTwo, KeyThree, KeyFour, KeyOne},
	}

	for _, guess := range guesses {
		s := NextState(New(10), SwipeCard{PinHash: HashKeys(pin1234)})
		for _, k := range guess {
			s = NextState(s, PressKey{k})
		}
		s = NextState(s, PressKey{KeyEnter})

		if d := diffState(State{CashInside: 10, Auth: Waiting{}}, s); d != "" {
			t.Errorf("错误 PIN %v 结果错误 (-want +got):\n%s", guess, d)
		}
	}
}

func TestProperty_WithdrawalBound(t *testing.T) {
	for _, s := range allStates() {
		if _, ok := s.Auth.(Authenticated); !ok {
			continue
		}
		amount := DecodeAmount(s.Register)
		got := NextState(s, PressKey{KeyEnter})

		want := s.CashInside
		if amount <= s.CashInside {
			want = s.CashInside - amount
		}
		if got.CashInside != want {
			t.Errorf("取款 %d 后现金错误: got %d, want %d", amount, got.CashInside, want)
		}
		if _, ok := got.Auth.(Waiting); !ok || len(got.Register) != 0 {
			t.Errorf("取款后应回到 Waiting 且寄存器为空: %v", got)
		}
	}
}
