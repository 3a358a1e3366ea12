package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转方式
const (
	RotateBySize  = "size"
	RotateDaily   = "daily"
	RotateHourly  = "hourly"
	OutputStdout  = "stdout"
	OutputStderr  = "stderr"
	rotatePattern = ".%Y%m%d%H"
)

// FileConfig 日志输出配置
type FileConfig struct {
	Output     string // stdout、stderr 或文件路径
	Rotation   string // size、daily、hourly
	MaxSize    int    // 单文件大小上限(MB)，仅 size 轮转
	MaxBackups int    // 保留的历史文件数
	MaxAge     int    // 保留天数
	Compress   bool   // 是否压缩历史文件，仅 size 轮转
}

// NewFileWriter 根据配置创建日志输出
func NewFileWriter(cfg FileConfig) (io.Writer, error) {
	switch cfg.Output {
	case "", OutputStderr:
		return os.Stderr, nil
	case OutputStdout:
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}

	switch cfg.Rotation {
	case "", RotateBySize:
		return &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}, nil
	case RotateDaily:
		return newTimeRotated(cfg, 24*time.Hour)
	case RotateHourly:
		return newTimeRotated(cfg, time.Hour)
	default:
		return nil, errors.Errorf("unknown log rotation %q", cfg.Rotation)
	}
}

func newTimeRotated(cfg FileConfig, every time.Duration) (io.Writer, error) {
	opts := []rotatelogs.Option{
		rotatelogs.WithLinkName(cfg.Output),
		rotatelogs.WithRotationTime(every),
	}
	// MaxAge 与 RotationCount 只能二选一
	if cfg.MaxAge > 0 {
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	} else if cfg.MaxBackups > 0 {
		opts = append(opts, rotatelogs.WithRotationCount(uint(cfg.MaxBackups)))
	}

	w, err := rotatelogs.New(cfg.Output+rotatePattern, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create rotatelogs")
	}
	return w, nil
}
