package moneyhero

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
)

// Chronological iterates over the history of s by ascending date.
// Transactions of the same day keep their insertion order.
func (s *PlayerState) Chronological() iter.Seq[Transaction] {
	history := slices.Clone(s.TransactionHistory)
	slices.SortStableFunc(history, func(a, b Transaction) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	return slices.Values(history)
}

// record applies tx to s, annotates it with its outcome and appends it to the
// history under a new id.
func (r Rules) record(s *PlayerState, tx Transaction, newID func() string) (Transaction, Outcome, error) {
	o, err := r.apply(s, tx)
	if err != nil {
		return tx, o, err
	}
	tx.ID = newID()
	tx.annotate(o)
	s.TransactionHistory = append(s.TransactionHistory, tx)
	return tx, o, nil
}

// remove deletes the transaction id from the history and rebuilds the
// progression of s. bonus is the experience granted outside of transactions
// (achievement rewards), it is granted again after the replay.
// It reports whether id was found.
func (r Rules) remove(s *PlayerState, id string, bonus int64) (Transaction, bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Transaction{}, false, nil
	}
	tx := s.TransactionHistory[i]
	s.TransactionHistory = slices.Delete(s.TransactionHistory, i, i+1)
	if err := r.replay(s, bonus); err != nil {
		return tx, true, err
	}
	return tx, true, nil
}

// replay recomputes money, debt, level and experience of s from a fresh
// player by applying the history in date order. The history itself and its
// annotations are left untouched.
func (r Rules) replay(s *PlayerState, bonus int64) error {
	fresh := r.NewPlayerState()
	for tx := range s.Chronological() {
		if _, err := r.apply(fresh, tx); err != nil {
			return fmt.Errorf("replaying transaction %q: %w", tx.ID, err)
		}
	}
	r.gainExp(fresh, bonus)

	s.Money = fresh.Money
	s.Debt = fresh.Debt
	s.Level = fresh.Level
	s.Exp = fresh.Exp
	s.ExpToNextLevel = fresh.ExpToNextLevel
	s.PercentLevel = fresh.PercentLevel
	return nil
}

// newTransactionID returns a random transaction id.
func newTransactionID() string { return uuid.NewString() }
