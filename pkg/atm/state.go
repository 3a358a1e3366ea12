package atm

import (
	"fmt"
	"strings"
)

// State ATM 的完整状态，是状态转换的唯一单元
type State struct {
	CashInside uint64    // 机内现金
	Auth       AuthState // 认证状态，nil 视为 Waiting
	Register   []Key     // 自上次 Enter 以来输入的数字键
}

// New 创建初始状态
func New(cashInside uint64) State {
	return State{
		CashInside: cashInside,
		Auth:       Waiting{},
		Register:   []Key{},
	}
}

// AuthOrDefault 返回认证状态，零值 State 的 nil 视为 Waiting
func (s State) AuthOrDefault() AuthState {
	if s.Auth == nil {
		return Waiting{}
	}
	return s.Auth
}

// Clone 深拷贝，寄存器不与原状态共享底层数组
func (s State) Clone() State {
	reg := make([]Key, len(s.Register))
	copy(reg, s.Register)
	return State{
		CashInside: s.CashInside,
		Auth:       s.AuthOrDefault(),
		Register:   reg,
	}
}

// Equal 比较两个状态，nil 与空寄存器视为相同
func (s State) Equal(o State) bool {
	if s.CashInside != o.CashInside || s.AuthOrDefault() != o.AuthOrDefault() {
		return false
	}
	if len(s.Register) != len(o.Register) {
		return false
	}
	for i := range s.Register {
		if s.Register[i] != o.Register[i] {
			return false
		}
	}
	return true
}

func (s State) String() string {
	keys := make([]string, len(s.Register))
	for i, k := range s.Register {
		keys[i] = k.String()
	}
	return fmt.Sprintf("{cash: %d, auth: %s, register: [%s]}",
		s.CashInside, s.AuthOrDefault(), strings.Join(keys, ","))
}
