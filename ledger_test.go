package moneyhero

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// progression keeps the fields rebuilt by a replay.
func progression(s *PlayerState) PlayerState {
	return PlayerState{
		Money:          s.Money,
		Debt:           s.Debt,
		Level:          s.Level,
		Exp:            s.Exp,
		ExpToNextLevel: s.ExpToNextLevel,
		PercentLevel:   s.PercentLevel,
	}
}

func recordAll(t *testing.T, r Rules, txs ...Transaction) *PlayerState {
	t.Helper()
	s := r.NewPlayerState()
	ids := sequentialIDs()
	for _, tx := range txs {
		if _, _, err := r.record(s, tx, ids); err != nil {
			t.Fatalf("record(%v) unexpected error: %v", tx.Name, err)
		}
	}
	return s
}

func TestRecord_Annotates(t *testing.T) {
	r := DefaultRules()
	s := recordAll(t, r,
		NewIncome(day("2025-03-01"), "Salary", "salary", D("500")),
		NewExpense(day("2025-03-02"), "Groceries", "food", D("100")),
		NewExpense(day("2025-03-03"), "Rent", "housing", D("700")),
	)
	want := []struct {
		id     string
		gained int64
		lost   int64
		result BattleResult
	}{
		{"tx1", 50, 0, Victory},
		{"tx2", 0, 0, Defeat},
		{"tx3", 0, 21, Critical},
	}
	if len(s.TransactionHistory) != len(want) {
		t.Fatalf("history has %d transactions, want %d", len(s.TransactionHistory), len(want))
	}
	for i, w := range want {
		tx := s.TransactionHistory[i]
		if tx.ID != w.id || tx.ExpGained != w.gained || tx.ExpLost != w.lost || tx.BattleResult != w.result {
			t.Errorf("transaction %d = {%s %d %d %s}, want %+v", i, tx.ID, tx.ExpGained, tx.ExpLost, tx.BattleResult, w)
		}
	}
}

func TestRemove_EqualsNeverAdded(t *testing.T) {
	r := DefaultRules()
	txs := []Transaction{
		NewIncome(day("2025-01-01"), "Salary", "salary", D("1500")),
		NewExpense(day("2025-01-02"), "Groceries", "food", D("120.50")),
		NewIncome(day("2025-01-03"), "Bonus", "business", D("800")),
		NewExpense(day("2025-01-04"), "Rent", "housing", D("900")),
		NewIncome(day("2025-01-05"), "Gift", "gift", D("60")),
	}
	tests := []struct {
		name string
		txs  []Transaction
	}{
		{"debt free", txs},
		{"debt crossing", append(slices.Clone(txs),
			NewExpense(day("2025-01-06"), "Car", "transport", D("3000")),
			NewIncome(day("2025-01-07"), "Freelance", "freelance", D("400")),
		)},
	}
	for _, tt := range tests {
		for i := range tt.txs {
			s := recordAll(t, r, tt.txs...)
			id := s.TransactionHistory[i].ID
			if _, found, err := r.remove(s, id, 0); err != nil || !found {
				t.Fatalf("%s: remove(%s) = found %v, err %v", tt.name, id, found, err)
			}

			without := slices.Delete(slices.Clone(tt.txs), i, i+1)
			want := recordAll(t, r, without...)
			if diff := cmp.Diff(progression(want), progression(s)); diff != "" {
				t.Errorf("%s: removing %s mismatch (-want +got):\n%s", tt.name, id, diff)
			}
			if len(s.TransactionHistory) != len(tt.txs)-1 {
				t.Errorf("%s: history has %d transactions, want %d", tt.name, len(s.TransactionHistory), len(tt.txs)-1)
			}
		}
	}
}

func TestReplay_EqualsLive(t *testing.T) {
	r := DefaultRules()
	s := recordAll(t, r,
		NewIncome(day("2025-01-01"), "Salary", "salary", D("2500")),
		NewExpense(day("2025-01-02"), "Rent", "housing", D("3100")),
		NewExpense(day("2025-01-03"), "Food", "food", D("45.30")),
		NewIncome(day("2025-01-04"), "Refund", "refunds", D("300")),
		NewIncome(day("2025-01-05"), "Salary", "salary", D("2500")),
		NewExpense(day("2025-01-06"), "Trip", "travel", D("5000")),
		NewIncome(day("2025-01-07"), "Business", "business", D("12000")),
	)
	live := progression(s)
	if err := r.replay(s, 0); err != nil {
		t.Fatalf("replay() unexpected error: %v", err)
	}
	if diff := cmp.Diff(live, progression(s)); diff != "" {
		t.Errorf("replay mismatch (-live +replay):\n%s", diff)
	}
	checkInvariants(t, r, s)
}

func TestReplay_DateOrder(t *testing.T) {
	r := DefaultRules()
	// recorded out of order: the expense happened before the income.
	s := recordAll(t, r,
		NewIncome(day("2025-02-10"), "Salary", "salary", D("1000")),
		NewExpense(day("2025-02-01"), "Rent", "housing", D("1000")),
	)
	if !s.Debt.IsZero() {
		t.Fatalf("live debt = %s, want 0", s.Debt)
	}
	if err := r.replay(s, 0); err != nil {
		t.Fatalf("replay() unexpected error: %v", err)
	}
	// replayed in date order, the rent first creates a 1000 debt.
	if !s.Money.IsZero() || !s.Debt.IsZero() || s.Exp != 0 || s.Level != 1 {
		t.Errorf("replay = money %s debt %s exp %d level %d, want all zero at level 1", s.Money, s.Debt, s.Exp, s.Level)
	}
	// annotations are not rewritten.
	if got := s.TransactionHistory[1].BattleResult; got != Defeat {
		t.Errorf("rent battle result = %s, want %s", got, Defeat)
	}
}

func TestReplay_Bonus(t *testing.T) {
	r := DefaultRules()
	s := recordAll(t, r, NewIncome(day("2025-02-10"), "Salary", "salary", D("900")))
	if err := r.replay(s, 25); err != nil {
		t.Fatalf("replay() unexpected error: %v", err)
	}
	if s.Level != 2 || s.Exp != 15 {
		t.Errorf("replay with bonus = level %d exp %d, want level 2 exp 15", s.Level, s.Exp)
	}
}

func TestRemove_Unknown(t *testing.T) {
	r := DefaultRules()
	s := recordAll(t, r, NewIncome(day("2025-02-10"), "Salary", "salary", D("900")))
	before := s.Clone()
	if _, found, err := r.remove(s, "nope", 0); found || err != nil {
		t.Errorf("remove(nope) = found %v, err %v, want not found", found, err)
	}
	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("remove(nope) changed the state (-want +got):\n%s", diff)
	}
}

func TestChronological(t *testing.T) {
	r := DefaultRules()
	s := recordAll(t, r,
		NewIncome(day("2025-02-10"), "A", "salary", D("1")),
		NewIncome(day("2025-02-01"), "B", "salary", D("1")),
		NewIncome(day("2025-02-10"), "C", "salary", D("1")),
		NewIncome(day("2025-02-05"), "D", "salary", D("1")),
	)
	var got []string
	for tx := range s.Chronological() {
		got = append(got, tx.Name)
	}
	if want := []string{"B", "D", "A", "C"}; !slices.Equal(got, want) {
		t.Errorf("Chronological() = %v, want %v", got, want)
	}
}
