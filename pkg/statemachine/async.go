package statemachine

import (
	"context"
	"sync"

	"github.com/junbin-yang/atmkit/pkg/atm"
	"github.com/junbin-yang/atmkit/pkg/logger"
)

// AsyncAction 异步操作
type AsyncAction struct {
	Action  atm.Action
	Context context.Context
}

// AsyncSession 通过队列串行处理操作的会话
type AsyncSession struct {
	Machine
	queue    chan AsyncAction
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	log      logger.Logger
}

// NewAsyncSession 创建异步会话
func NewAsyncSession(m Machine, queueSize int) *AsyncSession {
	return &AsyncSession{
		Machine: m,
		queue:   make(chan AsyncAction, queueSize),
		stopCh:  make(chan struct{}),
		log:     logger.Default(),
	}
}

// SetLogger 设置处理失败时使用的日志
func (a *AsyncSession) SetLogger(l logger.Logger) {
	if l != nil {
		a.log = l
	}
}

// Start 启动异步处理
func (a *AsyncSession) Start() {
	a.wg.Add(1)
	go a.processActions()
}

// Stop 停止异步处理，已入队的操作会先处理完
func (a *AsyncSession) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
	a.wg.Wait()
}

// TriggerAsync 异步提交操作
func (a *AsyncSession) TriggerAsync(ctx context.Context, action atm.Action) error {
	if action == nil {
		return ErrNilAction
	}
	select {
	case <-a.stopCh:
		return ErrSessionStopped
	default:
	}

	select {
	case a.queue <- AsyncAction{Action: action, Context: ctx}:
		return nil
	case <-a.stopCh:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processActions 处理操作队列
func (a *AsyncSession) processActions() {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopCh:
			a.drain()
			return
		case act := <-a.queue:
			a.apply(act)
		}
	}
}

// drain 处理停止前已入队的操作
func (a *AsyncSession) drain() {
	for {
		select {
		case act := <-a.queue:
			a.apply(act)
		default:
			return
		}
	}
}

func (a *AsyncSession) apply(act AsyncAction) {
	if err := a.Machine.Trigger(act.Context, act.Action); err != nil {
		a.log.Warn("async action failed",
			logger.Stringer("action", act.Action),
			logger.Err(err),
		)
	}
}

// QueueLength 返回队列长度
func (a *AsyncSession) QueueLength() int {
	return len(a.queue)
}
