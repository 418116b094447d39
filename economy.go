package moneyhero

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Outcome describes the progression consequences of a money movement.
type Outcome struct {
	GainedExp int64 `json:"gainedExp"`
	LostExp   int64 `json:"losedExp"`
	IsDebt    bool  `json:"isDebt"`

	LevelsGained int `json:"-"`
	LevelsLost   int `json:"-"`
}

// addMoney credits amount to s. Income first pays the debt back, only the
// surplus is banked and rewarded with experience.
func (r Rules) addMoney(s *PlayerState, amount decimal.Decimal) Outcome {
	var o Outcome
	switch {
	case !s.Debt.IsPositive():
		s.Money = s.Money.Add(amount)
		o.GainedExp = expFor(amount, r.ExpGainRate)
	case amount.GreaterThan(s.Debt):
		surplus := amount.Sub(s.Debt)
		s.Money = s.Money.Add(surplus)
		s.Debt = decimal.Zero
		o.GainedExp = expFor(surplus, r.ExpGainRate)
	default:
		s.Debt = s.Debt.Sub(amount)
		return o
	}
	o.LevelsGained = r.gainExp(s, o.GainedExp)
	return o
}

// spendMoney debits amount from s. Whatever money cannot cover becomes debt
// and costs experience.
func (r Rules) spendMoney(s *PlayerState, amount decimal.Decimal) Outcome {
	var o Outcome
	if !amount.GreaterThan(s.Money) {
		s.Money = s.Money.Sub(amount)
		return o
	}
	shortfall := amount.Sub(s.Money)
	s.Money = decimal.Zero
	s.Debt = s.Debt.Add(shortfall)
	o.IsDebt = true
	o.LostExp = expFor(shortfall, r.ExpLossRate)
	o.LevelsLost = r.loseExp(s, o.LostExp)
	return o
}

// apply is the single economic step of the ledger. Recording a transaction
// and replaying the history both go through it.
func (r Rules) apply(s *PlayerState, tx Transaction) (Outcome, error) {
	switch tx.Type {
	case Income:
		return r.addMoney(s, tx.Amount), nil
	case Expense:
		return r.spendMoney(s, tx.Amount), nil
	default:
		return Outcome{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
	}
}
