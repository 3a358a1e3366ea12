// Package keypad 将文本输入映射为 ATM 操作。
//
// 每行可以包含多个以空白分隔的指令：
//
//	swipe 1234   刷卡，PIN 只用于计算哈希
//	swipe        使用默认卡片刷卡（见 Parser）
//	1 2 3 4      按数字键，连续数字 "1234" 等价于逐个按下
//	enter        确认
package keypad

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/pkg/atm"
)

// ErrMissingPin swipe 指令缺少 PIN
var ErrMissingPin = fmt.Errorf("swipe requires a pin")

var enterAliases = map[string]struct{}{
	"enter": {},
	"e":     {},
	"ok":    {},
	"#":     {},
}

// ParseKey 解析单个按键
func ParseKey(tok string) (atm.Key, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if _, ok := enterAliases[tok]; ok {
		return atm.KeyEnter, nil
	}
	if len(tok) == 1 {
		if k, ok := atm.DigitKey(int(tok[0]) - '0'); ok {
			return k, nil
		}
	}
	return 0, errors.Wrapf(atm.ErrUnknownKey, "%q", tok)
}

// ParseLine 解析一行输入，空行返回空序列
func ParseLine(line string) ([]atm.Action, error) {
	return parse(line, nil)
}

// Parser 带默认卡片的解析器
type Parser struct {
	card *uint64
}

// NewParser 创建解析器，pin 非空时省略 PIN 的 swipe 指令使用该卡片
func NewParser(pin string) (*Parser, error) {
	p := &Parser{}
	if pin == "" {
		return p, nil
	}
	hash, err := atm.HashPin(pin)
	if err != nil {
		return nil, errors.Wrap(err, "default card")
	}
	p.card = &hash
	return p, nil
}

// ParseLine 解析一行输入
func (p *Parser) ParseLine(line string) ([]atm.Action, error) {
	return parse(line, p.card)
}

func parse(line string, card *uint64) ([]atm.Action, error) {
	fields := strings.Fields(line)
	actions := make([]atm.Action, 0, len(fields))

	for i := 0; i < len(fields); i++ {
		tok := strings.ToLower(fields[i])

		if tok == "swipe" || tok == "card" {
			if i+1 >= len(fields) || !looksLikePin(fields[i+1]) {
				if card == nil {
					return nil, ErrMissingPin
				}
				actions = append(actions, atm.SwipeCard{PinHash: *card})
				continue
			}
			i++
			hash, err := atm.HashPin(fields[i])
			if err != nil {
				return nil, errors.Wrap(err, "swipe")
			}
			actions = append(actions, atm.SwipeCard{PinHash: hash})
			continue
		}

		if _, ok := enterAliases[tok]; ok {
			actions = append(actions, atm.PressKey{Key: atm.KeyEnter})
			continue
		}

		keys, err := atm.ParseDigits(tok)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			actions = append(actions, atm.PressKey{Key: k})
		}
	}
	return actions, nil
}

// looksLikePin 判断 swipe 之后的指令是否为 PIN
func looksLikePin(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return tok != ""
}
