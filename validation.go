package moneyhero

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/etnz/moneyhero/date"
	"github.com/shopspring/decimal"
)

const (
	maxSanitizedLen   = 200
	minNameLen        = 2
	maxNameLen        = 30
	maxDescriptionLen = 500
	maxHistoryYears   = 10
)

var maxAmount = decimal.NewFromInt(1_000_000_000)

// Sanitize trims s, removes angle brackets and caps it to 200 characters.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if utf8.RuneCountInString(s) > maxSanitizedLen {
		s = string([]rune(s)[:maxSanitizedLen])
	}
	return s
}

// Validate checks t as entered by a user on day today. It returns a copy with
// quick fixes applied (sanitized text, default category) or an error wrapping
// ErrInvalidTransaction.
func (t Transaction) Validate(today date.Date) (Transaction, error) {
	invalid := func(format string, args ...any) (Transaction, error) {
		return t, fmt.Errorf("%w: %s", ErrInvalidTransaction, fmt.Sprintf(format, args...))
	}

	if t.Type != Income && t.Type != Expense {
		return invalid("unknown type %q", t.Type)
	}

	t.Name = Sanitize(t.Name)
	switch n := utf8.RuneCountInString(t.Name); {
	case n == 0:
		return invalid("transaction name is required")
	case n < minNameLen:
		return invalid("name must be at least %d characters", minNameLen)
	case n > maxNameLen:
		return invalid("name is too long (max %d characters)", maxNameLen)
	}

	// descriptions are not capped by Sanitize so that the length limit applies.
	t.Description = strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(t.Description))
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return invalid("description is too long (max %d characters)", maxDescriptionLen)
	}

	switch {
	case !t.Amount.IsPositive():
		return invalid("amount must be greater than 0")
	case t.Amount.GreaterThan(maxAmount):
		return invalid("amount is too large (max %s)", maxAmount)
	case !t.Amount.Equal(t.Amount.Truncate(2)):
		return invalid("amount can have maximum 2 decimal places")
	}

	switch {
	case t.Date.IsZero():
		return invalid("date is required")
	case t.Date.After(today):
		return invalid("date cannot be in the future")
	case t.Date.Before(today.AddYears(-maxHistoryYears)):
		return invalid("date cannot be more than %d years ago", maxHistoryYears)
	}

	t.Category = strings.ToLower(strings.TrimSpace(t.Category))
	if t.Category == "" {
		t.Category = OtherCategory
	}
	if !slices.Contains(Categories(t.Type), t.Category) {
		return invalid("unknown %s category %q", t.Type, t.Category)
	}
	return t, nil
}
