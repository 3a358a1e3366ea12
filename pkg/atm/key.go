package atm

// Key ATM 键盘上的按键
type Key uint8

const (
	KeyOne Key = iota + 1
	KeyTwo
	KeyThree
	KeyFour
	KeyEnter
)

// String 返回按键的显示名称
func (k Key) String() string {
	switch k {
	case KeyOne:
		return "1"
	case KeyTwo:
		return "2"
	case KeyThree:
		return "3"
	case KeyFour:
		return "4"
	case KeyEnter:
		return "enter"
	default:
		return "unknown"
	}
}

// IsDigit 是否为数字键
func (k Key) IsDigit() bool {
	return k >= KeyOne && k <= KeyFour
}

// Digit 返回数字键对应的数值，Enter 及未知按键返回 false
func (k Key) Digit() (uint64, bool) {
	if !k.IsDigit() {
		return 0, false
	}
	return uint64(k), true
}

// DigitKey 将 1..4 映射为数字键
func DigitKey(d int) (Key, bool) {
	if d < 1 || d > 4 {
		return 0, false
	}
	return Key(d), true
}
