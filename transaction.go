package moneyhero

import (
	"slices"

	"github.com/etnz/moneyhero/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// TxType is the direction of a transaction.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// BattleResult labels a recorded transaction for the battle log.
type BattleResult string

const (
	Victory  BattleResult = "victory"  // an income
	Defeat   BattleResult = "defeat"   // an expense covered by money
	Critical BattleResult = "critical" // an expense that created debt
)

// Categories of transactions, per type. OtherCategory is valid for both.
const OtherCategory = "other"

var (
	IncomeCategories  = []string{"salary", "business", "investment", "gift", "freelance", "refunds", OtherCategory}
	ExpenseCategories = []string{"food", "transport", "housing", "entertainment", "health", "education", "shopping", "travel", "debt", OtherCategory}
)

// Categories returns the categories allowed for t.
func Categories(t TxType) []string {
	switch t {
	case Income:
		return slices.Clone(IncomeCategories)
	case Expense:
		return slices.Clone(ExpenseCategories)
	}
	return nil
}

// Transaction is a single money movement of the player.
//
// ExpGained, ExpLost and BattleResult are derived when the transaction is
// recorded and never change afterwards.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TxType          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Date         date.Date       `json:"date"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	ExpGained    int64           `json:"expGained,omitempty"`
	ExpLost      int64           `json:"expLoosed,omitempty"`
	BattleResult BattleResult    `json:"battleResult,omitempty"`
}

// NewIncome creates an income transaction.
func NewIncome(day date.Date, name, category string, amount decimal.Decimal) Transaction {
	return Transaction{Type: Income, Date: day, Name: name, Category: category, Amount: amount}
}

// NewExpense creates an expense transaction.
func NewExpense(day date.Date, name, category string, amount decimal.Decimal) Transaction {
	return Transaction{Type: Expense, Date: day, Name: name, Category: category, Amount: amount}
}

// MarshalJSON writes the transaction fields in a stable order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	w.Append("amount", t.Amount)
	w.Append("date", t.Date)
	w.Append("name", t.Name)
	w.Append("description", t.Description)
	w.Append("category", t.Category)
	w.Optional("expGained", t.ExpGained)
	w.Optional("expLoosed", t.ExpLost)
	w.Optional("battleResult", t.BattleResult)
	return w.MarshalJSON()
}

// annotate stores the progression outcome on the transaction.
func (t *Transaction) annotate(o Outcome) {
	switch t.Type {
	case Income:
		t.ExpGained = o.GainedExp
		t.BattleResult = Victory
	case Expense:
		t.ExpLost = o.LostExp
		t.BattleResult = Defeat
		if o.IsDebt {
			t.BattleResult = Critical
		}
	}
}
