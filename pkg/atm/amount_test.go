package atm

import (
	"math"
	"testing"
)

func TestDecodeAmount(t *testing.T) {
	tests := []struct {
		register []Key
		want     uint64
	}{
		{nil, 0},
		{[]Key{KeyOne}, 1},
		{[]Key{KeyOne, KeyFour}, 14},
		{[]Key{KeyFour, KeyOne}, 41},
		{[]Key{KeyOne, KeyTwo, KeyThree, KeyFour}, 1234},
		{[]Key{KeyTwo, KeyTwo, KeyTwo}, 222},
	}

	for _, tt := range tests {
		if got := DecodeAmount(tt.register); got != tt.want {
			t.Errorf("DecodeAmount(%v) = %d, want %d", tt.register, got, tt.want)
		}
	}
}

func TestDecodeAmount_Saturates(t *testing.T) {
	reg := make([]Key, 25)
	for i := range reg {
		reg[i] = KeyFour
	}
	if got := DecodeAmount(reg); got != math.MaxUint64 {
		t.Errorf("超长输入应饱和, got %d", got)
	}

	// 19 位仍在 uint64 范围内
	reg = make([]Key, 19)
	for i := range reg {
		reg[i] = KeyOne
	}
	if got := DecodeAmount(reg); got != 1111111111111111111 {
		t.Errorf("19 位输入解析错误, got %d", got)
	}
}

func TestKeyDigit(t *testing.T) {
	for i, k := range []Key{KeyOne, KeyTwo, KeyThree, KeyFour} {
		d, ok := k.Digit()
		if !ok || d != uint64(i+1) {
			t.Errorf("%v.Digit() = %d, %v", k, d, ok)
		}
	}
	if _, ok := KeyEnter.Digit(); ok {
		t.Error("Enter 不应有数值")
	}
	if KeyEnter.IsDigit() {
		t.Error("Enter 不是数字键")
	}
}
