package atm

import (
	"math"
	"math/bits"
)

// DecodeAmount 将寄存器解析为十进制金额，最后按下的数字为最低位。
// 空寄存器为 0；超出 uint64 的输入饱和为 math.MaxUint64。
func DecodeAmount(register []Key) uint64 {
	var amount uint64
	weight := uint64(1)
	weightOverflow := false

	for i := len(register) - 1; i >= 0; i-- {
		d, ok := register[i].Digit()
		if !ok {
			continue
		}
		if weightOverflow {
			return math.MaxUint64
		}
		hi, term := bits.Mul64(d, weight)
		if hi != 0 {
			return math.MaxUint64
		}
		var carry uint64
		amount, carry = bits.Add64(amount, term, 0)
		if carry != 0 {
			return math.MaxUint64
		}

		hi, weight = bits.Mul64(weight, 10)
		weightOverflow = hi != 0
	}
	return amount
}
