package statemachine

import "fmt"

var (
	// ErrNilAction 当操作为空时返回
	ErrNilAction = fmt.Errorf("nil action")

	// ErrSessionNotFound 当会话不存在时返回
	ErrSessionNotFound = fmt.Errorf("session not found")

	// ErrSessionExists 当会话名称已被占用时返回
	ErrSessionExists = fmt.Errorf("session already exists")

	// ErrSessionStopped 当异步会话已停止时返回
	ErrSessionStopped = fmt.Errorf("session stopped")

	// ErrInvalidSnapshot 当快照内容无法还原为状态时返回
	ErrInvalidSnapshot = fmt.Errorf("invalid snapshot")
)
