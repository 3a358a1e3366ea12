package atm

import "github.com/cespare/xxhash/v2"

// HashKeys 计算按键序列的哈希。刷卡时提供的哈希与输入 PIN 后的校验必须使用同一函数。
func HashKeys(keys []Key) uint64 {
	buf := make([]byte, len(keys))
	for i, k := range keys {
		buf[i] = byte(k)
	}
	return xxhash.Sum64(buf)
}
