package atm

import "strconv"

// AuthState 认证状态，只能是 Waiting、Authenticating、Authenticated 三者之一
type AuthState interface {
	isAuthState()
	String() string
}

// Waiting 尚无会话，等待刷卡
type Waiting struct{}

// Authenticating 已刷卡，等待输入 PIN；PinHash 为正确 PIN 的哈希
type Authenticating struct {
	PinHash uint64
}

// Authenticated PIN 校验通过，等待输入取款金额
type Authenticated struct{}

func (Waiting) isAuthState()        {}
func (Authenticating) isAuthState() {}
func (Authenticated) isAuthState()  {}

func (Waiting) String() string { return "Waiting" }

func (a Authenticating) String() string {
	return "Authenticating(" + strconv.FormatUint(a.PinHash, 10) + ")"
}

func (Authenticated) String() string { return "Authenticated" }
