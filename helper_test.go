package moneyhero

import (
	"io"
	"log"
	"strconv"
	"testing"

	"github.com/etnz/moneyhero/date"
	"github.com/shopspring/decimal"
)

// D is a helper for tests to create exact decimals from literals.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day is a helper for tests to create dates from literals.
func day(s string) date.Date { return date.MustParse(s) }

// quietLogger discards engine logs in tests.
var quietLogger = log.New(io.Discard, "", 0)

// manualScheduler queues deferred work until run is called.
type manualScheduler struct {
	queue []func()
}

func (m *manualScheduler) Defer(fn func()) { m.queue = append(m.queue, fn) }

func (m *manualScheduler) run() {
	q := m.queue
	m.queue = nil
	for _, fn := range q {
		fn()
	}
}

// sequentialIDs returns an id generator producing tx1, tx2...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "tx" + strconv.Itoa(n)
	}
}

// newTestEngine returns an engine over a memory store, with a manual
// scheduler and sequential ids.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *manualScheduler, *MemoryStore) {
	t.Helper()
	sched := &manualScheduler{}
	store := NewMemoryStore()
	base := []Option{
		WithScheduler(sched),
		WithLogger(quietLogger),
		WithIDGenerator(sequentialIDs()),
	}
	e, err := NewEngine(store, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	return e, sched, store
}

// emptyCatalog has no achievement at all.
func emptyCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog() unexpected error: %v", err)
	}
	return c
}

// checkInvariants fails if s breaks a progression invariant under r.
func checkInvariants(t *testing.T, r Rules, s *PlayerState) {
	t.Helper()
	if s.Level < 1 {
		t.Errorf("level = %d, want >= 1", s.Level)
	}
	if s.Exp < 0 || s.Exp >= s.ExpToNextLevel {
		t.Errorf("exp = %d, want in [0, %d)", s.Exp, s.ExpToNextLevel)
	}
	if want := r.ExpForLevel(s.Level); s.ExpToNextLevel != want {
		t.Errorf("expToNextLevel = %d, want ExpForLevel(%d) = %d", s.ExpToNextLevel, s.Level, want)
	}
	if want := percent(s.Exp, s.ExpToNextLevel); s.PercentLevel != want {
		t.Errorf("percentLevel = %d, want %d", s.PercentLevel, want)
	}
	if s.Money.IsNegative() || s.Debt.IsNegative() {
		t.Errorf("money = %s, debt = %s, want both >= 0", s.Money, s.Debt)
	}
}
