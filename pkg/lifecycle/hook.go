package lifecycle

import (
	"context"

	"go.uber.org/multierr"
)

// HookFunc 钩子函数
type HookFunc func(ctx context.Context) error

// WorkerHookFunc 协程钩子函数
type WorkerHookFunc func(name string, err error)

// Hooks 钩子集合
type Hooks struct {
	onStartup     []HookFunc
	onWorkerStart []WorkerHookFunc
	onWorkerExit  []WorkerHookFunc
	onShutdown    []HookFunc
	onTimeout     []HookFunc
}

func newHooks() *Hooks {
	return &Hooks{}
}

// callStartup 启动钩子，遇错即停
func (h *Hooks) callStartup(ctx context.Context) error {
	for _, fn := range h.onStartup {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) callWorkerStart(name string, err error) {
	for _, fn := range h.onWorkerStart {
		fn(name, err)
	}
}

func (h *Hooks) callWorkerExit(name string, err error) {
	for _, fn := range h.onWorkerExit {
		fn(name, err)
	}
}

// callShutdown 退出钩子全部执行，错误合并返回
func (h *Hooks) callShutdown(ctx context.Context) error {
	var errs error
	for _, fn := range h.onShutdown {
		errs = multierr.Append(errs, fn(ctx))
	}
	return errs
}

func (h *Hooks) callTimeout(ctx context.Context) error {
	var errs error
	for _, fn := range h.onTimeout {
		errs = multierr.Append(errs, fn(ctx))
	}
	return errs
}
