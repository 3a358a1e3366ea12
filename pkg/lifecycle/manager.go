package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/junbin-yang/atmkit/pkg/logger"
)

// Manager 生命周期管理器：启动协程、等待信号或协程退出、按序优雅关闭
type Manager struct {
	mu              sync.Mutex
	workers         []*Worker
	names           map[string]struct{}
	hooks           *Hooks
	signals         []os.Signal
	shutdownTimeout time.Duration
	rootCtx         context.Context
	cancel          context.CancelFunc
	running         bool
	log             logger.Logger
}

// NewManager 创建生命周期管理器
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		names:           make(map[string]struct{}),
		hooks:           newHooks(),
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
		rootCtx:         context.Background(),
		log:             logger.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AddWorker 添加协程，必须在 Run 之前调用
func (m *Manager) AddWorker(name string, runFunc RunFunc, opts ...WorkerOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	if _, exists := m.names[name]; exists {
		return ErrWorkerExists
	}

	m.names[name] = struct{}{}
	m.workers = append(m.workers, NewWorker(name, runFunc, opts...))
	return nil
}

// OnStartup 注册启动钩子
func (m *Manager) OnStartup(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onStartup = append(m.hooks.onStartup, fn)
}

// OnWorkerStart 注册协程启动钩子
func (m *Manager) OnWorkerStart(fn WorkerHookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onWorkerStart = append(m.hooks.onWorkerStart, fn)
}

// OnWorkerExit 注册协程退出钩子
func (m *Manager) OnWorkerExit(fn WorkerHookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onWorkerExit = append(m.hooks.onWorkerExit, fn)
}

// OnShutdown 注册退出钩子
func (m *Manager) OnShutdown(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onShutdown = append(m.hooks.onShutdown, fn)
}

// OnTimeout 注册超时钩子
func (m *Manager) OnTimeout(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onTimeout = append(m.hooks.onTimeout, fn)
}

// Run 启动管理器并阻塞到退出。
// 收到信号、调用 Shutdown、任一协程返回错误或标记了 WithShutdownOnExit 的协程结束时开始关闭。
func (m *Manager) Run() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	ctx, cancel := context.WithCancel(m.rootCtx)
	m.cancel = cancel
	workers := append([]*Worker{}, m.workers...)
	m.mu.Unlock()
	defer cancel()

	if err := m.hooks.callStartup(ctx); err != nil {
		return errors.Wrap(err, "startup hook")
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, m.signals...)
	defer stopSignals()

	g, gctx := errgroup.WithContext(sigCtx)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			m.hooks.callWorkerStart(w.Name(), nil)
			err := w.Run(gctx)
			m.hooks.callWorkerExit(w.Name(), err)
			if w.shutdownOnExit {
				cancel()
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return errors.Wrapf(err, "worker %s", w.Name())
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case <-gctx.Done():
		if sigCtx.Err() != nil && ctx.Err() == nil {
			m.log.Info("shutdown signal received")
		}
	case err := <-done:
		// 所有协程均已退出
		done <- err
	}

	return m.shutdown(workers, done)
}

// Shutdown 手动触发退出，Run 负责完成关闭流程
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

// shutdown 执行退出流程
func (m *Manager) shutdown(workers []*Worker, done <-chan error) error {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	// 调用停止函数（LIFO顺序）
	for i := len(workers) - 1; i >= 0; i-- {
		if err := workers[i].Stop(shutdownCtx); err != nil {
			m.log.Warn("worker stop failed", logger.String("worker", workers[i].Name()), logger.Err(err))
		}
	}

	var runErr error
	select {
	case runErr = <-done:
	case <-shutdownCtx.Done():
		_ = m.hooks.callTimeout(shutdownCtx)
		return ErrShutdownTimeout
	}

	if err := m.hooks.callShutdown(shutdownCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
