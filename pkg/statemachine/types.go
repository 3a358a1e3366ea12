package statemachine

import (
	"context"

	"github.com/junbin-yang/atmkit/pkg/atm"
)

// Phase 认证阶段名称，用于回调注册与日志
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
)

// PhaseOf 返回认证状态对应的阶段
func PhaseOf(auth atm.AuthState) Phase {
	switch auth.(type) {
	case atm.Authenticating:
		return PhaseAuthenticating
	case atm.Authenticated:
		return PhaseAuthenticated
	default:
		return PhaseWaiting
	}
}

// TransitionFunc 在每次状态转换时调用
type TransitionFunc func(ctx context.Context, t Transition) error

// PhaseFunc 在进入或退出阶段时执行
type PhaseFunc func(ctx context.Context, state atm.State) error

// DispenseFunc 在机内现金减少时调用，amount 为应出钞金额
type DispenseFunc func(ctx context.Context, amount uint64) error

// Machine 定义 ATM 会话的核心接口
type Machine interface {
	// Current 返回当前状态的副本
	Current() atm.State

	// Phase 返回当前认证阶段
	Phase() Phase

	// Trigger 应用一次操作
	Trigger(ctx context.Context, action atm.Action) error

	// Can 检查操作是否会改变当前状态
	Can(action atm.Action) bool

	// Reset 重置到初始状态
	Reset() error
}
