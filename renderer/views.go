package renderer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/moneyhero"
)

const barWidth = 20

// Status is the view of the player sheet.
type Status struct {
	PlayerName     string
	Level          int
	Exp            int64
	ExpToNextLevel int64
	PercentLevel   int
	Bar            string
	Money          string
	Debt           string
	InDebt         bool
	Unlocked       int
	Total          int
}

// NewStatus prepares the status view of s. Amounts are formatted in currency.
func NewStatus(s *moneyhero.PlayerState, catalog *moneyhero.Catalog, currency string) *Status {
	return &Status{
		PlayerName:     s.PlayerName,
		Level:          s.Level,
		Exp:            s.Exp,
		ExpToNextLevel: s.ExpToNextLevel,
		PercentLevel:   s.PercentLevel,
		Bar:            progressBar(s.PercentLevel),
		Money:          moneyhero.M(s.Money, currency).String(),
		Debt:           moneyhero.M(s.Debt, currency).String(),
		InDebt:         s.Debt.IsPositive(),
		Unlocked:       len(s.UnlockedAchievements),
		Total:          catalog.Len(),
	}
}

func progressBar(percent int) string {
	n := min(max(percent*barWidth/100, 0), barWidth)
	return strings.Repeat("#", n) + strings.Repeat("-", barWidth-n)
}

// BattleLog is the view of the transaction history, most recent first.
type BattleLog struct {
	PlayerName string
	ShowIDs    bool
	Entries    []BattleEntry
}

// BattleEntry is one line of the battle log.
type BattleEntry struct {
	ID       string
	Date     string
	Name     string
	Category string
	Amount   string
	Result   string
	Exp      string
}

// NewBattleLog prepares the battle log of s. A positive limit keeps only the
// most recent entries.
func NewBattleLog(s *moneyhero.PlayerState, currency string, limit int) *BattleLog {
	var entries []BattleEntry
	for tx := range s.Chronological() {
		entries = append(entries, newBattleEntry(tx, currency))
	}
	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return &BattleLog{PlayerName: s.PlayerName, Entries: entries}
}

func newBattleEntry(tx moneyhero.Transaction, currency string) BattleEntry {
	amount := moneyhero.M(tx.Amount, currency)
	exp := "-"
	if tx.Type == moneyhero.Expense {
		amount = amount.Neg()
	}
	switch {
	case tx.ExpGained > 0:
		exp = fmt.Sprintf("+%d", tx.ExpGained)
	case tx.ExpLost > 0:
		exp = fmt.Sprintf("-%d", tx.ExpLost)
	}
	return BattleEntry{
		ID:       tx.ID,
		Date:     tx.Date.String(),
		Name:     tx.Name,
		Category: tx.Category,
		Amount:   amount.SignedString(),
		Result:   resultLabel(tx.BattleResult),
		Exp:      exp,
	}
}

func resultLabel(r moneyhero.BattleResult) string {
	switch r {
	case moneyhero.Victory:
		return "Victory"
	case moneyhero.Defeat:
		return "Defeat"
	case moneyhero.Critical:
		return "Critical"
	}
	return string(r)
}

// AchievementList is the view of the achievements catalog.
type AchievementList struct {
	Unlocked int
	Total    int
	Items    []AchievementItem
}

// AchievementItem is one achievement of the list.
type AchievementItem struct {
	Name        string
	Description string
	Reward      int64
	Unlocked    bool
}

// NewAchievementList prepares the achievements view.
func NewAchievementList(statuses []moneyhero.AchievementStatus) *AchievementList {
	l := &AchievementList{Total: len(statuses)}
	for _, st := range statuses {
		if st.Unlocked {
			l.Unlocked++
		}
		l.Items = append(l.Items, AchievementItem{
			Name:        st.Name,
			Description: st.Description,
			Reward:      st.Reward.Exp,
			Unlocked:    st.Unlocked,
		})
	}
	return l
}
