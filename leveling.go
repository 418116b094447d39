package moneyhero

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Rules holds the tunable constants of the progression model.
//
// The zero value is not usable, start from DefaultRules.
type Rules struct {
	BaseExp       int64           // experience needed to leave level 1
	GrowthRate    decimal.Decimal // threshold multiplier per level
	ExpGainRate   decimal.Decimal // experience per unit of income
	ExpLossRate   decimal.Decimal // experience lost per unit of shortfall
	StartingMoney decimal.Decimal // money of a fresh player
}

// DefaultRules returns the standard rule set: a 100 points first level,
// growing by 10% per level, 1 point per 10 units earned and 0.07 point lost
// per unit of debt taken.
func DefaultRules() Rules {
	return Rules{
		BaseExp:       100,
		GrowthRate:    decimal.RequireFromString("1.1"),
		ExpGainRate:   decimal.RequireFromString("0.1"),
		ExpLossRate:   decimal.RequireFromString("0.07"),
		StartingMoney: decimal.Zero,
	}
}

// Validate checks that the rules describe a total progression.
func (r Rules) Validate() error {
	switch {
	case r.BaseExp < 1:
		return fmt.Errorf("%w: base exp must be at least 1, got %d", ErrInvalidRules, r.BaseExp)
	case r.GrowthRate.LessThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: growth rate must be at least 1, got %s", ErrInvalidRules, r.GrowthRate)
	case r.ExpGainRate.IsNegative():
		return fmt.Errorf("%w: exp gain rate must not be negative, got %s", ErrInvalidRules, r.ExpGainRate)
	case r.ExpLossRate.IsNegative():
		return fmt.Errorf("%w: exp loss rate must not be negative, got %s", ErrInvalidRules, r.ExpLossRate)
	case r.StartingMoney.IsNegative():
		return fmt.Errorf("%w: starting money must not be negative, got %s", ErrInvalidRules, r.StartingMoney)
	}
	return nil
}

// MaxLevel is the highest level a player can reach. A stored state above it
// is corrupt.
const MaxLevel = 1000

var maxExp = decimal.NewFromInt(math.MaxInt64)

// ExpForLevel returns the experience required to complete level, that is
// floor(BaseExp × GrowthRate^(level-1)). Levels below 1 count as level 1 and
// levels above MaxLevel as MaxLevel. The result saturates at math.MaxInt64.
//
// The power is computed in exact decimal arithmetic so that the curve never
// depends on floating point rounding.
func (r Rules) ExpForLevel(level int) int64 {
	level = min(level, MaxLevel)
	v := decimal.NewFromInt(r.BaseExp)
	for i := 1; i < level; i++ {
		v = v.Mul(r.GrowthRate)
		if v.GreaterThanOrEqual(maxExp) {
			return math.MaxInt64
		}
	}
	return v.Floor().IntPart()
}

// ExpForLevel returns the experience required to complete level with the
// default rules: 100, 110, 121, 133...
func ExpForLevel(level int) int64 { return DefaultRules().ExpForLevel(level) }

// expFor converts an amount of money into whole experience points.
func expFor(amount, rate decimal.Decimal) int64 {
	v := amount.Mul(rate).Floor()
	if v.GreaterThanOrEqual(maxExp) {
		return math.MaxInt64
	}
	return v.IntPart()
}

// addExp returns a+b for non negative b, saturating at math.MaxInt64.
func addExp(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
