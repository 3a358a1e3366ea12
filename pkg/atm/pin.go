package atm

import "github.com/pkg/errors"

// ParseDigits 将 "1234" 这样的字符串解析为数字键序列，只接受 1..4
func ParseDigits(s string) ([]Key, error) {
	keys := make([]Key, 0, len(s))
	for i, r := range s {
		k, ok := DigitKey(int(r - '0'))
		if !ok {
			return nil, errors.Wrapf(ErrUnknownKey, "digit %q at position %d", r, i)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// HashPin 解析并哈希 PIN，刷卡方用它生成 SwipeCard 的哈希
func HashPin(pin string) (uint64, error) {
	if pin == "" {
		return 0, ErrEmptyPin
	}
	keys, err := ParseDigits(pin)
	if err != nil {
		return 0, err
	}
	return HashKeys(keys), nil
}
