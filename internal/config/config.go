package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/pkg/atm"
	pkgConfig "github.com/junbin-yang/atmkit/pkg/config"
	"github.com/junbin-yang/atmkit/pkg/logger"
)

// Config ATM 驱动配置
type Config struct {
	Machine         MachineConfig `yaml:"machine" json:"machine"`
	Session         SessionConfig `yaml:"session" json:"session"`
	Logger          LoggerConfig  `yaml:"logger" json:"logger"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"ATM_SHUTDOWN_TIMEOUT"`
}

// MachineConfig 机器配置
type MachineConfig struct {
	Name       string `yaml:"name" json:"name" env:"ATM_NAME"`
	CashInside uint64 `yaml:"cash_inside" json:"cash_inside" env:"ATM_CASH_INSIDE"`
	Pin        string `yaml:"pin" json:"pin" env:"ATM_PIN"` // 默认卡片 PIN，为空时 swipe 必须带 PIN
}

// SessionConfig 会话配置
type SessionConfig struct {
	QueueSize    int `yaml:"queue_size" json:"queue_size"`
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `yaml:"level" json:"level" env:"ATM_LOG_LEVEL"`
	Output     string `yaml:"output" json:"output" env:"ATM_LOG_OUTPUT"`
	Rotation   string `yaml:"rotation" json:"rotation"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Machine: MachineConfig{
			Name:       "atm",
			CashInside: 100,
		},
		Session: SessionConfig{
			QueueSize:    64,
			HistoryLimit: 256,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Output:   logger.OutputStderr,
			Rotation: logger.RotateBySize,
			MaxSize:  10,
		},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Machine.Name == "" {
		return errors.New("machine.name is required")
	}
	if c.Machine.Pin != "" {
		if _, err := atm.ParseDigits(c.Machine.Pin); err != nil {
			return errors.Wrap(err, "machine.pin")
		}
	}
	if c.Session.QueueSize < 0 {
		return errors.Errorf("session.queue_size must not be negative: %d", c.Session.QueueSize)
	}
	if _, err := logger.ParseLevel(c.Logger.Level); err != nil {
		return errors.Wrap(err, "logger.level")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.Errorf("shutdown_timeout must be positive: %s", c.ShutdownTimeout)
	}
	return nil
}

// InitialState 根据配置构造 ATM 初始状态
func (c *Config) InitialState() atm.State {
	return atm.New(c.Machine.CashInside)
}

// FileConfig 转换为日志输出配置
func (l LoggerConfig) FileConfig() logger.FileConfig {
	return logger.FileConfig{
		Output:     l.Output,
		Rotation:   l.Rotation,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
		Compress:   l.Compress,
	}
}

// NewManager 创建带默认值与校验的配置管理器
func NewManager(opts ...pkgConfig.Option) *pkgConfig.Manager[Config] {
	opts = append([]pkgConfig.Option{pkgConfig.WithAppName("atm")}, opts...)
	return pkgConfig.NewManager[Config](opts...).
		WithDefaults(Default).
		WithValidator((*Config).Validate)
}

// Load 从指定路径加载配置，path 为空时按默认路径查找，找不到文件时使用默认配置
func Load(path string, opts ...pkgConfig.Option) (*Config, *pkgConfig.Manager[Config], error) {
	mgr := NewManager(opts...)
	if err := mgr.Load(path); err != nil {
		if path == "" && errors.Cause(err) == pkgConfig.ErrConfigNotFound {
			cfg := Default()
			return cfg, nil, cfg.Validate()
		}
		return nil, nil, err
	}

	cfg, err := mgr.Get()
	if err != nil {
		return nil, nil, err
	}
	return cfg, mgr, nil
}
