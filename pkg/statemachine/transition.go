package statemachine

import "github.com/junbin-yang/atmkit/pkg/atm"

// Outcome 一次转换的业务结果
type Outcome string

const (
	OutcomeIgnored            Outcome = "ignored"
	OutcomeCardAccepted       Outcome = "card_accepted"
	OutcomeKeyBuffered        Outcome = "key_buffered"
	OutcomePinAccepted        Outcome = "pin_accepted"
	OutcomePinRejected        Outcome = "pin_rejected"
	OutcomeDispensed          Outcome = "dispensed"
	OutcomeWithdrawalRejected Outcome = "withdrawal_rejected"
)

// Transition 描述一次状态转换
type Transition struct {
	From   atm.State
	To     atm.State
	Action atm.Action
}

// FromPhase 源阶段
func (t Transition) FromPhase() Phase { return PhaseOf(t.From.Auth) }

// ToPhase 目标阶段
func (t Transition) ToPhase() Phase { return PhaseOf(t.To.Auth) }

// Withdrawn 本次转换出钞金额
func (t Transition) Withdrawn() uint64 { return Withdrawn(t.From, t.To) }

// Outcome 根据源阶段与操作判断结果
func (t Transition) Outcome() Outcome {
	switch act := t.Action.(type) {
	case atm.SwipeCard:
		if t.FromPhase() == PhaseWaiting {
			return OutcomeCardAccepted
		}
	case atm.PressKey:
		if t.FromPhase() == PhaseWaiting {
			return OutcomeIgnored
		}
		if act.Key != atm.KeyEnter {
			if act.Key.IsDigit() {
				return OutcomeKeyBuffered
			}
			return OutcomeIgnored
		}
		if t.FromPhase() == PhaseAuthenticating {
			if t.ToPhase() == PhaseAuthenticated {
				return OutcomePinAccepted
			}
			return OutcomePinRejected
		}
		if atm.DecodeAmount(t.From.Register) > t.From.CashInside {
			return OutcomeWithdrawalRejected
		}
		return OutcomeDispensed
	}
	return OutcomeIgnored
}

// Withdrawn 计算两个状态之间减少的现金，现金未减少时为 0
func Withdrawn(prev, next atm.State) uint64 {
	if next.CashInside >= prev.CashInside {
		return 0
	}
	return prev.CashInside - next.CashInside
}
