package atm

import "fmt"

var (
	// ErrUnknownKey 当输入无法映射为按键时返回
	ErrUnknownKey = fmt.Errorf("unknown key")

	// ErrEmptyPin 当 PIN 为空时返回
	ErrEmptyPin = fmt.Errorf("empty pin")
)
