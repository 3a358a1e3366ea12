package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/pkg/logger"
)

// Manager 通用配置管理器，T 为配置结构体类型
type Manager[T any] struct {
	settings
	instance   *T     // 配置实例
	configPath string // 配置文件路径
	defaults   func() *T
	validate   func(*T) error
	mu         sync.RWMutex

	watcher   *fsnotify.Watcher
	watchQuit chan struct{}
	closeOnce sync.Once

	// 配置变更回调
	callbacks []func(old, new *T)
}

// NewManager 创建配置管理器
func NewManager[T any](options ...Option) *Manager[T] {
	cm := &Manager[T]{
		settings:  defaultSettings(),
		defaults:  func() *T { return new(T) },
		watchQuit: make(chan struct{}),
	}

	for _, opt := range options {
		opt(&cm.settings)
	}

	return cm
}

// WithDefaults 设置默认值构造函数，配置文件中缺失的字段保留默认值
func (cm *Manager[T]) WithDefaults(fn func() *T) *Manager[T] {
	cm.defaults = fn
	return cm
}

// WithValidator 设置加载后的校验函数，校验失败的配置不会生效
func (cm *Manager[T]) WithValidator(fn func(*T) error) *Manager[T] {
	cm.validate = fn
	return cm
}

// Load 加载配置文件，customPath 为空时按默认路径查找
func (cm *Manager[T]) Load(customPath string) error {
	cm.mu.Lock()
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			cm.mu.Unlock()
			return errors.Wrap(err, "invalid custom config path")
		}
		cm.configPath = customPath
		cm.chooseSerializer(customPath)
	} else {
		path, err := cm.findDefaultConfigPath()
		if err != nil {
			cm.mu.Unlock()
			return errors.Wrap(err, "default config not found")
		}
		cm.configPath = path
	}
	cm.mu.Unlock()

	instance, err := cm.read()
	if err != nil {
		return err
	}

	cm.mu.Lock()
	cm.instance = instance
	watch := cm.enableWatch
	cm.mu.Unlock()

	if watch {
		return cm.startWatch()
	}
	return nil
}

// Get 获取配置实例
func (cm *Manager[T]) Get() (*T, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.instance == nil {
		return nil, ErrNotLoaded
	}
	return cm.instance, nil
}

// Path 返回当前配置文件路径
func (cm *Manager[T]) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// Save 保存配置到文件
func (cm *Manager[T]) Save() error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.instance == nil || cm.configPath == "" {
		return ErrNotLoaded
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	// 先写入临时文件再替换
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Wrap(err, "write temp config")
	}
	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return errors.Wrap(err, "rename temp config")
	}
	return nil
}

// Reload 手动重新加载配置，成功后触发变更回调
func (cm *Manager[T]) Reload() error {
	cm.mu.RLock()
	path := cm.configPath
	cm.mu.RUnlock()

	if path == "" {
		return ErrNotLoaded
	}

	instance, err := cm.read()
	if err != nil {
		return err
	}

	cm.mu.Lock()
	old := cm.instance
	cm.instance = instance
	callbacks := make([]func(old, new *T), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 回调在锁外执行
	for _, callback := range callbacks {
		callback(old, instance)
	}
	return nil
}

// OnChange 注册配置变更回调
func (cm *Manager[T]) OnChange(callback func(old, new *T)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

// Close 停止监听
func (cm *Manager[T]) Close() {
	cm.closeOnce.Do(func() {
		close(cm.watchQuit)
		cm.mu.Lock()
		if cm.watcher != nil {
			_ = cm.watcher.Close()
			cm.watcher = nil
		}
		cm.mu.Unlock()
	})
}

/* ------------------------------ 内部方法 ------------------------------ */

// read 读取、解析配置文件并应用环境变量与校验
func (cm *Manager[T]) read() (*T, error) {
	cm.mu.RLock()
	path, serializer := cm.configPath, cm.serializer
	cm.mu.RUnlock()

	if err := validateConfigPath(path); err != nil {
		return nil, errors.Wrap(err, "invalid config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	instance := cm.defaults()
	if err := serializer.Unmarshal(data, instance); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config (%s)", serializer.GetName())
	}
	if err := applyEnvOverrides(instance); err != nil {
		return nil, errors.Wrap(err, "apply env overrides")
	}
	if cm.validate != nil {
		if err := cm.validate(instance); err != nil {
			return nil, errors.Wrap(err, "validate config")
		}
	}
	return instance, nil
}

// chooseSerializer 选择序列化器：强制格式 > 后缀识别 > 默认
func (cm *Manager[T]) chooseSerializer(path string) {
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}

	ext := filepath.Ext(path)
	for _, format := range cm.supportedFormats {
		for _, e := range format.GetFileExts() {
			if e == ext {
				cm.serializer = format
				return
			}
		}
	}
}

// findDefaultConfigPath 查找默认配置路径
func (cm *Manager[T]) findDefaultConfigPath() (string, error) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	for _, pathTpl := range cm.defaultPaths {
		basePath := replacePathVars(pathTpl, map[string]string{
			"AppName": cm.appName,
			"ExecDir": execDir,
		})

		// 先尝试无后缀文件
		if err := validateConfigPath(basePath); err == nil {
			cm.chooseSerializer(basePath)
			return basePath, nil
		}

		for _, format := range cm.supportedFormats {
			for _, ext := range format.GetFileExts() {
				fullPath := basePath + ext
				if err := validateConfigPath(fullPath); err == nil {
					cm.serializer = format
					if cm.forceFormat != nil {
						cm.serializer = cm.forceFormat
					}
					return fullPath, nil
				}
			}
		}
	}

	return "", ErrConfigNotFound
}

// startWatch 启动配置文件监听；监听所在目录，以便编辑器以重命名方式保存时仍能收到事件
func (cm *Manager[T]) startWatch() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := watcher.Add(filepath.Dir(cm.configPath)); err != nil {
		_ = watcher.Close()
		return errors.Wrap(err, "add watch path")
	}

	cm.watcher = watcher
	go cm.watchLoop(watcher, filepath.Clean(cm.configPath))
	return nil
}

// watchLoop 监听文件变化循环
func (cm *Manager[T]) watchLoop(watcher *fsnotify.Watcher, target string) {
	debounce := time.NewTimer(cm.watchDebounceInterval)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(cm.watchDebounceInterval)
			}

		case <-debounce.C:
			if err := cm.Reload(); err != nil {
				cm.log.Warn("config auto reload failed", logger.String("path", target), logger.Err(err))
			} else {
				cm.log.Info("config auto reloaded", logger.String("path", target))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cm.log.Warn("config watch error", logger.Err(err))

		case <-cm.watchQuit:
			debounce.Stop()
			return
		}
	}
}
