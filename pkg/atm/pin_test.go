package atm

import (
	"testing"

	"github.com/pkg/errors"
)

func TestHashKeys_Deterministic(t *testing.T) {
	if HashKeys(pin1234) != HashKeys([]Key{KeyOne, KeyTwo, KeyThree, KeyFour}) {
		t.Error("相同序列哈希应相同")
	}
	if HashKeys(pin1234) == HashKeys([]Key{KeyFour, KeyThree, KeyTwo, KeyOne}) {
		t.Error("顺序不同的序列哈希不应相同")
	}
	if HashKeys(nil) != HashKeys([]Key{}) {
		t.Error("nil 与空序列哈希应相同")
	}
}

func TestParseDigits(t *testing.T) {
	keys, err := ParseDigits("4321")
	if err != nil {
		t.Fatalf("ParseDigits 失败: %v", err)
	}
	want := []Key{KeyFour, KeyThree, KeyTwo, KeyOne}
	if len(keys) != len(want) {
		t.Fatalf("长度错误: got %d, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("第 %d 位错误: got %v, want %v", i, keys[i], want[i])
		}
	}

	for _, bad := range []string{"5", "12a", "0", "1 2"} {
		if _, err := ParseDigits(bad); errors.Cause(err) != ErrUnknownKey {
			t.Errorf("ParseDigits(%q) 期望 ErrUnknownKey, got %v", bad, err)
		}
	}
}

func TestHashPin(t *testing.T) {
	h, err := HashPin("1234")
	if err != nil {
		t.Fatalf("HashPin 失败: %v", err)
	}
	if h != HashKeys(pin1234) {
		t.Error("HashPin 与 HashKeys 结果不一致")
	}

	if _, err := HashPin(""); err != ErrEmptyPin {
		t.Errorf("期望 ErrEmptyPin, got %v", err)
	}
}
