package statemachine

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/pkg/atm"
	"github.com/junbin-yang/atmkit/pkg/logger"
)

// Session 单台 ATM 的会话，串行化对同一状态的操作。
// 状态计算委托给 atm.NextState，Session 只负责保存当前状态并分发回调。
// 回调在持锁期间执行，回调内不能再调用本会话的方法。
type Session struct {
	mu           sync.RWMutex
	name         string
	current      atm.State
	initial      atm.State
	onEnter      map[Phase][]PhaseFunc
	onExit       map[Phase][]PhaseFunc
	onTransition []TransitionFunc
	onDispense   []DispenseFunc
	log          logger.Logger
}

// SessionOption 会话配置选项
type SessionOption func(*Session)

// WithName 设置会话名称（用于日志）
func WithName(name string) SessionOption {
	return func(s *Session) {
		s.name = name
	}
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession 创建会话
func NewSession(initial atm.State, opts ...SessionOption) *Session {
	s := &Session{
		name:    "atm",
		current: initial.Clone(),
		initial: initial.Clone(),
		onEnter: make(map[Phase][]PhaseFunc),
		onExit:  make(map[Phase][]PhaseFunc),
		log:     logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name 返回会话名称
func (s *Session) Name() string {
	return s.name
}

// Current 返回当前状态
func (s *Session) Current() atm.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Phase 返回当前阶段
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PhaseOf(s.current.Auth)
}

// SetOnEnter 设置进入阶段时的回调
func (s *Session) SetOnEnter(phase Phase, fn PhaseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnter[phase] = append(s.onEnter[phase], fn)
}

// SetOnExit 设置退出阶段时的回调
func (s *Session) SetOnExit(phase Phase, fn PhaseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExit[phase] = append(s.onExit[phase], fn)
}

// OnTransition 设置每次转换时的回调
func (s *Session) OnTransition(fn TransitionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTransition = append(s.onTransition, fn)
}

// OnDispense 设置出钞回调
func (s *Session) OnDispense(fn DispenseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDispense = append(s.onDispense, fn)
}

// Can 检查操作是否会改变当前状态
func (s *Session) Can(action atm.Action) bool {
	if action == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !atm.NextState(s.current, action).Equal(s.current)
}

// Trigger 应用一次操作
func (s *Session) Trigger(ctx context.Context, action atm.Action) error {
	if action == nil {
		return ErrNilAction
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "trigger")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Transition{
		From:   s.current,
		To:     atm.NextState(s.current, action),
		Action: action,
	}
	fromPhase, toPhase := t.FromPhase(), t.ToPhase()
	phaseChanged := fromPhase != toPhase

	// 执行退出回调
	if phaseChanged {
		for _, fn := range s.onExit[fromPhase] {
			if err := fn(ctx, t.From); err != nil {
				return errors.Wrapf(err, "exit %s", fromPhase)
			}
		}
	}

	// 执行转换回调
	for _, fn := range s.onTransition {
		if err := fn(ctx, t); err != nil {
			return errors.Wrapf(err, "transition %s -> %s", fromPhase, toPhase)
		}
	}

	// 更新状态
	s.current = t.To

	s.log.Debug("atm transition",
		logger.String("session", s.name),
		logger.Stringer("action", action),
		logger.String("from", string(fromPhase)),
		logger.String("to", string(toPhase)),
		logger.String("outcome", string(t.Outcome())),
		logger.Uint64("cash", t.To.CashInside),
		logger.Int("register", len(t.To.Register)),
	)

	if amount := t.Withdrawn(); amount > 0 {
		for _, fn := range s.onDispense {
			if err := fn(ctx, amount); err != nil {
				return errors.Wrapf(err, "dispense %d", amount)
			}
		}
	}

	// 执行进入回调
	if phaseChanged {
		for _, fn := range s.onEnter[toPhase] {
			if err := fn(ctx, t.To); err != nil {
				return errors.Wrapf(err, "enter %s", toPhase)
			}
		}
	}

	return nil
}

// Reset 重置到初始状态
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.initial.Clone()
	return nil
}

// restore 直接替换当前状态，不触发回调
func (s *Session) restore(state atm.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = state.Clone()
}
