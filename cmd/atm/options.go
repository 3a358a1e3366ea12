package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/internal/config"
	pkgConfig "github.com/junbin-yang/atmkit/pkg/config"
)

// options 命令行参数，优先级高于配置文件
type options struct {
	Config      string `short:"c" long:"config" description:"配置文件路径，为空时按默认路径查找"`
	Cash        uint64 `long:"cash" description:"机内现金，覆盖 machine.cash_inside"`
	Pin         string `long:"pin" description:"默认卡片 PIN，覆盖 machine.pin"`
	LogLevel    string `long:"log-level" description:"日志级别 (debug|info|warn|error)"`
	Watch       bool   `long:"watch" description:"监听配置文件变化"`
	ShowVersion bool   `short:"V" long:"version" description:"显示版本并退出"`
}

// parseOptions 解析命令行参数，返回的 cashSet 表示是否显式指定了 --cash
func parseOptions(args []string) (*options, bool, error) {
	opts := &options{}
	parser := flags.NewParser(opts, flags.Default)
	parser.Usage = "[OPTIONS] < keypad-script"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, false, err
	}
	cashSet := parser.FindOptionByLongName("cash").IsSet()
	return opts, cashSet, nil
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig(opts *options, cashSet bool) (*config.Config, *pkgConfig.Manager[config.Config], error) {
	loaded, mgr, err := config.Load(opts.Config, pkgConfig.WithConfigWatch(opts.Watch, 0))
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}

	cfg := *loaded
	if cashSet {
		cfg.Machine.CashInside = opts.Cash
	}
	if opts.Pin != "" {
		cfg.Machine.Pin = opts.Pin
	}
	if opts.LogLevel != "" {
		cfg.Logger.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		if mgr != nil {
			mgr.Close()
		}
		return nil, nil, errors.Wrap(err, "invalid options")
	}
	return &cfg, mgr, nil
}

// isHelp 判断是否为 --help 导致的退出
func isHelp(err error) bool {
	e, ok := err.(*flags.Error)
	return ok && e.Type == flags.ErrHelp
}
