package moneyhero

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultPlayerName is the name of a player that never chose one.
const DefaultPlayerName = "Hero"

// PlayerState is the complete progression of a player.
//
// Its JSON form is the persisted shape.
type PlayerState struct {
	PlayerName           string          `json:"playerName"`
	Money                decimal.Decimal `json:"money"`
	Debt                 decimal.Decimal `json:"debt"`
	Level                int             `json:"level"`
	Exp                  int64           `json:"exp"`
	ExpToNextLevel       int64           `json:"expToNextLevel"`
	PercentLevel         int             `json:"percentLevel"`
	UnlockedAchievements []string        `json:"unlockedAchievements"`
	TransactionHistory   []Transaction   `json:"transactionHistory"`
}

// NewPlayerState returns the state of a player that has done nothing yet.
func (r Rules) NewPlayerState() *PlayerState {
	return &PlayerState{
		PlayerName:           DefaultPlayerName,
		Money:                r.StartingMoney,
		Debt:                 decimal.Zero,
		Level:                1,
		ExpToNextLevel:       r.ExpForLevel(1),
		UnlockedAchievements: []string{},
		TransactionHistory:   []Transaction{},
	}
}

// Clone returns a deep copy of s.
func (s *PlayerState) Clone() *PlayerState {
	c := *s
	c.UnlockedAchievements = slices.Clone(s.UnlockedAchievements)
	c.TransactionHistory = slices.Clone(s.TransactionHistory)
	if c.UnlockedAchievements == nil {
		c.UnlockedAchievements = []string{}
	}
	if c.TransactionHistory == nil {
		c.TransactionHistory = []Transaction{}
	}
	return &c
}

// Unlocked reports whether the achievement id has been unlocked.
func (s *PlayerState) Unlocked(id string) bool {
	return slices.Contains(s.UnlockedAchievements, id)
}

// Transaction returns the transaction with the given id.
func (s *PlayerState) Transaction(id string) (Transaction, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Transaction{}, false
	}
	return s.TransactionHistory[i], true
}

func (s *PlayerState) indexOf(id string) int {
	return slices.IndexFunc(s.TransactionHistory, func(tx Transaction) bool { return tx.ID == id })
}

// refresh recomputes the progress percentage toward the next level.
func (s *PlayerState) refresh() {
	if s.ExpToNextLevel <= 0 {
		s.PercentLevel = 0
		return
	}
	s.PercentLevel = percent(s.Exp, s.ExpToNextLevel)
}

// percent returns floor(100 × exp / next) without overflowing.
func percent(exp, next int64) int {
	q, _ := decimal.NewFromInt(exp).Mul(decimal.NewFromInt(100)).QuoRem(decimal.NewFromInt(next), 0)
	return int(q.IntPart())
}

// normalize repairs a state read from storage so that every progression
// invariant holds under r. A level above MaxLevel cannot be repaired and
// reports ErrCorruptState.
func (r Rules) normalize(s *PlayerState) error {
	if s.Level > MaxLevel {
		return fmt.Errorf("%w: level %d is above %d", ErrCorruptState, s.Level, MaxLevel)
	}
	if s.PlayerName == "" {
		s.PlayerName = DefaultPlayerName
	}
	if s.UnlockedAchievements == nil {
		s.UnlockedAchievements = []string{}
	}
	if s.TransactionHistory == nil {
		s.TransactionHistory = []Transaction{}
	}
	if s.Money.IsNegative() {
		s.Money = decimal.Zero
	}
	if s.Debt.IsNegative() {
		s.Debt = decimal.Zero
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.Exp < 0 {
		s.Exp = 0
	}
	s.ExpToNextLevel = r.ExpForLevel(s.Level)
	// gaining nothing cascades any overflowing experience.
	r.gainExp(s, 0)
	return nil
}
