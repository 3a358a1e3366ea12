package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/internal/config"
	"github.com/junbin-yang/atmkit/internal/keypad"
	"github.com/junbin-yang/atmkit/pkg/atm"
	"github.com/junbin-yang/atmkit/pkg/lifecycle"
	"github.com/junbin-yang/atmkit/pkg/logger"
	"github.com/junbin-yang/atmkit/pkg/statemachine"
)

// atmMain 真正的入口，便于 defer 在 os.Exit 之前执行
func atmMain(args []string, in io.Reader, out io.Writer) error {
	// 1. 解析参数并加载配置
	opts, cashSet, err := parseOptions(args)
	if isHelp(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("failed parsing arguments: %v", err)
	}
	if opts.ShowVersion {
		fmt.Fprintf(out, "atm %s (commit %s)\n", Version, Commit)
		return nil
	}

	cfg, mgr, err := loadConfig(opts, cashSet)
	if err != nil {
		return err
	}
	if mgr != nil {
		defer mgr.Close()
	}

	// 2. 初始化日志
	log, err := newLogger(cfg.Logger)
	if err != nil {
		return err
	}
	logger.ReplaceDefault(log)
	defer log.Sync()

	log.Info("atm starting",
		logger.String("name", cfg.Machine.Name),
		logger.Uint64("cash_inside", cfg.Machine.CashInside),
		logger.String("version", Version),
	)

	// 3. 配置热更新只调整日志级别，命令行指定的级别优先
	if mgr != nil && opts.LogLevel == "" {
		mgr.OnChange(func(old, new *config.Config) {
			level, err := logger.ParseLevel(new.Logger.Level)
			if err != nil {
				log.Warn("ignore invalid log level", logger.String("level", new.Logger.Level))
				return
			}
			log.SetLevel(level)
			log.Info("log level changed",
				logger.String("from", old.Logger.Level),
				logger.String("to", new.Logger.Level),
			)
		})
	}

	// 4. 初始化会话
	parser, err := keypad.NewParser(cfg.Machine.Pin)
	if err != nil {
		return err
	}
	session := newSession(cfg, log, out)
	async := statemachine.NewAsyncSession(session, cfg.Session.QueueSize)
	async.SetLogger(log)

	// 5. 注册协程
	lm := lifecycle.NewManager(
		lifecycle.WithShutdownTimeout(cfg.ShutdownTimeout),
		lifecycle.WithLogger(log),
	)

	async.Start()
	err = lm.AddWorker("session",
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		lifecycle.WithStopFunc(func(ctx context.Context) error {
			async.Stop()
			return nil
		}),
	)
	if err != nil {
		return err
	}

	err = lm.AddWorker("keypad",
		func(ctx context.Context) error {
			return readKeypad(ctx, in, parser, async, log)
		},
		lifecycle.WithShutdownOnExit(),
	)
	if err != nil {
		return err
	}

	// 6. 注册生命周期钩子
	lm.OnShutdown(func(ctx context.Context) error {
		final := session.Current()
		log.Info("atm stopped",
			logger.Uint64("cash_inside", final.CashInside),
			logger.Int("transitions", len(session.GetHistory())),
		)
		return nil
	})

	lm.OnWorkerExit(func(name string, err error) {
		if err != nil {
			log.Error("worker exited", logger.String("worker", name), logger.Err(err))
		}
	})

	// 7. 运行，输入结束或收到信号时退出
	return lm.Run()
}

// newLogger 按配置创建日志
func newLogger(cfg config.LoggerConfig) (*logger.ZapLogger, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	w, err := logger.NewFileWriter(cfg.FileConfig())
	if err != nil {
		return nil, errors.Wrap(err, "open log output")
	}
	return logger.New(w, level, logger.AddCaller()), nil
}

// newSession 创建带历史记录的会话，每次转换后向 out 打印新状态
func newSession(cfg *config.Config, log logger.Logger, out io.Writer) *statemachine.PersistentSession {
	session := statemachine.NewPersistentSession(
		cfg.InitialState(),
		cfg.Session.HistoryLimit,
		statemachine.WithName(cfg.Machine.Name),
		statemachine.WithLogger(log),
	)

	session.OnTransition(func(ctx context.Context, t statemachine.Transition) error {
		_, err := fmt.Fprintf(out, "%-14s %-20s %s\n", t.Action, t.Outcome(), t.To)
		return err
	})

	session.OnDispense(func(ctx context.Context, amount uint64) error {
		log.Info("cash dispensed",
			logger.String("atm", cfg.Machine.Name),
			logger.Uint64("amount", amount),
		)
		return nil
	})

	session.SetOnEnter(statemachine.PhaseAuthenticated, func(ctx context.Context, s atm.State) error {
		log.Info("pin accepted", logger.String("atm", cfg.Machine.Name))
		return nil
	})

	return session
}

// readKeypad 逐行读取输入并提交到会话，输入结束时返回
func readKeypad(ctx context.Context, in io.Reader, parser *keypad.Parser, async *statemachine.AsyncSession, log logger.Logger) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	// 已入队的操作在退出时仍需处理完，不随输入协程一起取消
	submitCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return errors.Wrap(err, "read keypad")
				default:
					return nil
				}
			}
			actions, err := parser.ParseLine(line)
			if err != nil {
				log.Warn("invalid input", logger.String("line", line), logger.Err(err))
				continue
			}
			for _, act := range actions {
				if err := async.TriggerAsync(submitCtx, act); err != nil {
					return err
				}
			}
		}
	}
}
