package moneyhero

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Reward is granted once, when an achievement is unlocked.
type Reward struct {
	Exp int64 `yaml:"exp" json:"exp"`
}

// Achievement is a goal the player can reach. Condition is evaluated against
// the current state, a nil Condition is never met.
type Achievement struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Condition   func(PlayerState) bool `json:"-"`
	Reward      Reward                 `json:"reward"`
}

// AchievementStatus is an achievement seen from a given player.
type AchievementStatus struct {
	Achievement
	Unlocked bool
}

// MarshalJSON flattens the achievement fields next to the unlocked flag.
func (a AchievementStatus) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(a.Achievement)
	w.Append("unlocked", a.Unlocked)
	return w.MarshalJSON()
}

// Catalog is the ordered, immutable list of achievements.
type Catalog struct {
	list []Achievement
}

// NewCatalog creates a catalog. Ids must be unique and not empty.
func NewCatalog(achievements ...Achievement) (*Catalog, error) {
	seen := make(map[string]bool, len(achievements))
	for _, a := range achievements {
		if a.ID == "" {
			return nil, fmt.Errorf("achievement %q has no id", a.Name)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("achievement %q is declared twice", a.ID)
		}
		if a.Reward.Exp < 0 {
			return nil, fmt.Errorf("achievement %q has a negative reward", a.ID)
		}
		seen[a.ID] = true
	}
	return &Catalog{list: append([]Achievement(nil), achievements...)}, nil
}

// Len returns the number of achievements in c.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.list)
}

// All returns the achievements in catalog order.
func (c *Catalog) All() []Achievement {
	if c == nil {
		return nil
	}
	return append([]Achievement(nil), c.list...)
}

// Get returns the achievement id.
func (c *Catalog) Get(id string) (Achievement, bool) {
	for _, a := range c.All() {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Status returns every achievement of c with its unlocked flag for s.
func (c *Catalog) Status(s *PlayerState) []AchievementStatus {
	var res []AchievementStatus
	for _, a := range c.All() {
		res = append(res, AchievementStatus{Achievement: a, Unlocked: s.Unlocked(a.ID)})
	}
	return res
}

// bonus sums the rewards of the unlocked achievements.
func (c *Catalog) bonus(unlocked []string) int64 {
	var total int64
	for _, a := range c.All() {
		for _, id := range unlocked {
			if id == a.ID {
				total = addExp(total, a.Reward.Exp)
				break
			}
		}
	}
	return total
}

// evaluate unlocks every achievement of c whose condition holds for s, in
// catalog order. Each reward is granted immediately so later conditions see
// it. It returns the ids unlocked by this call.
func (r Rules) evaluate(c *Catalog, s *PlayerState, logger *log.Logger) []string {
	var unlocked []string
	for _, a := range c.All() {
		if s.Unlocked(a.ID) || !conditionMet(a, *s.Clone(), logger) {
			continue
		}
		unlocked = append(unlocked, a.ID)
		r.gainExp(s, a.Reward.Exp)
	}
	s.UnlockedAchievements = append(s.UnlockedAchievements, unlocked...)
	return unlocked
}

// conditionMet evaluates a.Condition, a panic counts as not met.
func conditionMet(a Achievement, s PlayerState, logger *log.Logger) (met bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("[engine] achievement %q: condition failed: %v", a.ID, r)
			met = false
		}
	}()
	if a.Condition == nil {
		return false
	}
	return a.Condition(s)
}

//go:embed achievements.yaml
var defaultCatalog []byte

// DefaultCatalog returns the built-in achievements.
func DefaultCatalog() *Catalog {
	c, err := DecodeCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("built-in achievements: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open achievements %q: %w", path, err)
	}
	defer f.Close()
	c, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("could not read achievements %q: %w", path, err)
	}
	return c, nil
}

// Criterion compares a player metric to a value.
type Criterion struct {
	Metric string  `yaml:"metric"`
	Op     string  `yaml:"op"`
	Value  float64 `yaml:"value"`
}

// criteria accepts either a single criterion or a list of them.
type criteria []Criterion

func (c *criteria) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		var one Criterion
		if err := n.Decode(&one); err != nil {
			return err
		}
		*c = criteria{one}
		return nil
	}
	var many []Criterion
	if err := n.Decode(&many); err != nil {
		return err
	}
	*c = many
	return nil
}

// DecodeCatalog reads a YAML list of achievements, in the format of the
// built-in achievements.yaml. Each entry unlocks when all its criteria hold.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var entries []struct {
		ID          string   `yaml:"id"`
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		When        criteria `yaml:"when"`
		Reward      Reward   `yaml:"reward"`
	}
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid achievements: %w", err)
	}
	list := make([]Achievement, 0, len(entries))
	for _, e := range entries {
		cond, err := compile(e.When)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", e.ID, err)
		}
		list = append(list, Achievement{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Condition:   cond,
			Reward:      e.Reward,
		})
	}
	return NewCatalog(list...)
}

// playerMetrics are the values criteria can refer to.
var playerMetrics = map[string]func(s PlayerState) decimal.Decimal{
	"level":         func(s PlayerState) decimal.Decimal { return decimal.NewFromInt(int64(s.Level)) },
	"exp":           func(s PlayerState) decimal.Decimal { return decimal.NewFromInt(s.Exp) },
	"money":         func(s PlayerState) decimal.Decimal { return s.Money },
	"debt":          func(s PlayerState) decimal.Decimal { return s.Debt },
	"transactions":  func(s PlayerState) decimal.Decimal { return countOf(s, func(Transaction) bool { return true }) },
	"incomes":       func(s PlayerState) decimal.Decimal { return countOf(s, isType(Income)) },
	"expenses":      func(s PlayerState) decimal.Decimal { return countOf(s, isType(Expense)) },
	"victories":     func(s PlayerState) decimal.Decimal { return countOf(s, isResult(Victory)) },
	"defeats":       func(s PlayerState) decimal.Decimal { return countOf(s, isResult(Defeat)) },
	"criticals":     func(s PlayerState) decimal.Decimal { return countOf(s, isResult(Critical)) },
	"total_income":  func(s PlayerState) decimal.Decimal { return sumOf(s, isType(Income)) },
	"total_expense": func(s PlayerState) decimal.Decimal { return sumOf(s, isType(Expense)) },
}

var comparisons = map[string]func(c int) bool{
	">=": func(c int) bool { return c >= 0 },
	">":  func(c int) bool { return c > 0 },
	"<=": func(c int) bool { return c <= 0 },
	"<":  func(c int) bool { return c < 0 },
	"==": func(c int) bool { return c == 0 },
}

func isType(t TxType) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Type == t }
}

func isResult(b BattleResult) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.BattleResult == b }
}

func countOf(s PlayerState, keep func(Transaction) bool) decimal.Decimal {
	var n int64
	for _, tx := range s.TransactionHistory {
		if keep(tx) {
			n++
		}
	}
	return decimal.NewFromInt(n)
}

func sumOf(s PlayerState, keep func(Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range s.TransactionHistory {
		if keep(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// compile turns criteria into a condition.
func compile(cs criteria) (func(PlayerState) bool, error) {
	if len(cs) == 0 {
		return nil, fmt.Errorf("no criteria")
	}
	type check struct {
		metric func(PlayerState) decimal.Decimal
		op     func(int) bool
		value  decimal.Decimal
	}
	checks := make([]check, 0, len(cs))
	for _, c := range cs {
		metric, ok := playerMetrics[c.Metric]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", c.Metric)
		}
		op, ok := comparisons[c.Op]
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", c.Op)
		}
		checks = append(checks, check{metric, op, decimal.NewFromFloat(c.Value)})
	}
	return func(s PlayerState) bool {
		for _, c := range checks {
			if !c.op(c.metric(s).Cmp(c.value)) {
				return false
			}
		}
		return true
	}, nil
}
