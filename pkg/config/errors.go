package config

import "fmt"

var (
	// ErrNotLoaded 当配置尚未加载时返回
	ErrNotLoaded = fmt.Errorf("config not loaded")

	// ErrConfigNotFound 当默认路径下找不到配置文件时返回
	ErrConfigNotFound = fmt.Errorf("no valid config file found")
)
