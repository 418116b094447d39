package moneyhero

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/etnz/moneyhero/date"
	"github.com/shopspring/decimal"
)

// Engine owns a player state and is the only way to change it.
//
// Every operation is serialized. Changes are saved to the Store after each
// operation, and store failures are logged but never returned: the state in
// memory stays authoritative.
type Engine struct {
	mu    sync.Mutex
	state *PlayerState

	rules   Rules
	catalog *Catalog
	store   Store
	key     string
	sched   Scheduler
	logger  *log.Logger
	metrics *Metrics
	newID   func() string

	pending sync.WaitGroup
	subs    subscribers
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces DefaultRules.
func WithRules(r Rules) Option { return func(e *Engine) { e.rules = r } }

// WithCatalog replaces DefaultCatalog.
func WithCatalog(c *Catalog) Option { return func(e *Engine) { e.catalog = c } }

// WithKey sets the storage key, DefaultKey otherwise.
func WithKey(key string) Option { return func(e *Engine) { e.key = key } }

// WithScheduler sets how post-commit hooks run, GoScheduler otherwise.
func WithScheduler(s Scheduler) Option { return func(e *Engine) { e.sched = s } }

// WithLogger sets the logger, log.Default() otherwise.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics records the engine activity in m.
func WithMetrics(m *Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithIDGenerator sets the transaction id generator, random UUIDs otherwise.
func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

// NewEngine creates an Engine and loads the player state saved in store.
// A missing or unreadable state starts a new player. A nil store keeps the
// state in memory only.
func NewEngine(store Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		rules:  DefaultRules(),
		store:  store,
		key:    DefaultKey,
		sched:  GoScheduler,
		logger: log.Default(),
		newID:  newTransactionID,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "", 0)
	}
	if err := e.rules.Validate(); err != nil {
		return nil, err
	}
	e.state = e.load()
	e.metrics.observe(e.state)
	return e, nil
}

func (e *Engine) load() *PlayerState {
	if e.store == nil {
		return e.rules.NewPlayerState()
	}
	s, err := e.store.Load(e.key)
	if err != nil {
		e.logger.Printf("[engine] could not load %q, starting a new player: %v", e.key, err)
		return e.rules.NewPlayerState()
	}
	if s == nil {
		return e.rules.NewPlayerState()
	}
	if err := e.rules.normalize(s); err != nil {
		e.logger.Printf("[engine] could not load %q, starting a new player: %v", e.key, err)
		return e.rules.NewPlayerState()
	}
	return s
}

func (e *Engine) save() {
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.key, e.state); err != nil {
		e.logger.Printf("[engine] could not save %q: %v", e.key, err)
	}
}

// mutate runs fn on the state under the engine lock, then saves the state
// and publishes the returned events. When fn fails or panics the previous
// state is restored and nothing is saved nor published.
func (e *Engine) mutate(op string, fn func(s *PlayerState) ([]Event, error)) (err error) {
	var events []Event
	e.mu.Lock()
	backup := e.state.Clone()
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: %w: %v", op, ErrEngineFault, r)
			}
		}()
		events, err = fn(e.state)
	}()
	if err != nil {
		e.state = backup
		e.logger.Printf("[engine] %s failed: %v", op, err)
		e.metrics.fault(op)
		e.mu.Unlock()
		return err
	}
	e.save()
	e.metrics.observe(e.state)
	e.mu.Unlock()

	e.subs.publish(events)
	return nil
}

// State returns a copy of the player state.
func (e *Engine) State() *PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Transaction returns the recorded transaction id.
func (e *Engine) Transaction(id string) (Transaction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Transaction(id)
}

// Rules returns the rules of the engine.
func (e *Engine) Rules() Rules { return e.rules }

// Achievements returns the catalog with the unlocked flag of the player.
func (e *Engine) Achievements() []AchievementStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Status(e.state)
}

// Achievement returns the status of the achievement id, or an error wrapping
// ErrUnknownAchievement.
func (e *Engine) Achievement(id string) (AchievementStatus, error) {
	a, ok := e.catalog.Get(id)
	if !ok {
		return AchievementStatus{}, fmt.Errorf("%w: %q", ErrUnknownAchievement, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return AchievementStatus{Achievement: a, Unlocked: e.state.Unlocked(id)}, nil
}

// Subscribe registers fn to receive every event published after a committed
// change. fn is called outside of the engine lock. The returned function
// cancels the subscription.
func (e *Engine) Subscribe(fn func(Event)) (cancel func()) {
	return e.subs.add(fn)
}

// SetPlayerName renames the player. Blank names are ignored.
func (e *Engine) SetPlayerName(name string) {
	name = Sanitize(name)
	if name == "" {
		return
	}
	_ = e.mutate("setPlayerName", func(s *PlayerState) ([]Event, error) {
		s.PlayerName = name
		return nil, nil
	})
}

// AddMoney credits amount to the player. Money first pays back any debt, only
// the surplus earns experience.
func (e *Engine) AddMoney(amount decimal.Decimal) Outcome {
	var o Outcome
	err := e.mutate("addMoney", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		o = e.rules.addMoney(s, amount)
		return levelEvents(before, s.Level), nil
	})
	if err != nil {
		return Outcome{}
	}
	return o
}

// SpendMoney debits amount from the player. What money cannot cover becomes
// debt and costs experience.
func (e *Engine) SpendMoney(amount decimal.Decimal) Outcome {
	var o Outcome
	err := e.mutate("spendMoney", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		o = e.rules.spendMoney(s, amount)
		return levelEvents(before, s.Level), nil
	})
	if err != nil {
		return Outcome{}
	}
	return o
}

// AddExp grants amount experience directly.
func (e *Engine) AddExp(amount int64) {
	_ = e.mutate("addExp", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		e.rules.gainExp(s, amount)
		return levelEvents(before, s.Level), nil
	})
}

// LoseExp removes amount experience directly.
func (e *Engine) LoseExp(amount int64) {
	_ = e.mutate("loseExp", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		e.rules.loseExp(s, amount)
		return levelEvents(before, s.Level), nil
	})
}

// AddTransaction applies tx to the player and records it with a new id and
// its battle outcome. A zero date means today.
//
// Achievements are checked after AddTransaction has returned, through the
// engine Scheduler; use Wait to observe their effect.
func (e *Engine) AddTransaction(tx Transaction) (Transaction, error) {
	switch {
	case tx.Type != Income && tx.Type != Expense:
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
	case !tx.Amount.IsPositive():
		return Transaction{}, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidTransaction)
	}
	if tx.Date.IsZero() {
		tx.Date = date.Today()
	}

	var recorded Transaction
	err := e.mutate("addTransaction", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		var err error
		recorded, _, err = e.rules.record(s, tx, e.newID)
		if err != nil {
			return nil, err
		}
		// counted under the lock so that Wait never misses a committed transaction.
		e.pending.Add(1)
		events := []Event{{Type: EventTransactionAdded, TransactionID: recorded.ID, Level: s.Level}}
		return append(events, levelEvents(before, s.Level)...), nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransaction) {
			return Transaction{}, err
		}
		return Transaction{}, fmt.Errorf("could not add transaction: %w", ErrTransactionFailed)
	}
	e.metrics.recorded(recorded)

	e.sched.Defer(func() {
		defer e.pending.Done()
		e.CheckAchievements()
	})
	return recorded, nil
}

// DeleteTransaction removes the transaction id and recomputes the player
// progression from the remaining history. Deleting an unknown id does nothing.
func (e *Engine) DeleteTransaction(id string) error {
	found := false
	err := e.mutate("deleteTransaction", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		var err error
		_, found, err = e.rules.remove(s, id, e.catalog.bonus(s.UnlockedAchievements))
		if err != nil || !found {
			return nil, err
		}
		events := []Event{{Type: EventTransactionDeleted, TransactionID: id, Level: s.Level}}
		return append(events, levelEvents(before, s.Level)...), nil
	})
	if err != nil {
		return fmt.Errorf("could not delete transaction %q: %w", id, ErrTransactionFailed)
	}
	if found {
		e.metrics.deleted()
	}
	return nil
}

// CheckAchievements unlocks every achievement whose condition now holds and
// grants its reward. It returns the ids unlocked by this call.
func (e *Engine) CheckAchievements() []string {
	var unlocked []string
	err := e.mutate("checkAchievements", func(s *PlayerState) ([]Event, error) {
		before := s.Level
		unlocked = e.rules.evaluate(e.catalog, s, e.logger)
		var events []Event
		for _, id := range unlocked {
			events = append(events, Event{Type: EventAchievementUnlocked, AchievementID: id, Level: s.Level})
		}
		return append(events, levelEvents(before, s.Level)...), nil
	})
	if err != nil {
		return nil
	}
	e.metrics.unlocked(len(unlocked))
	return unlocked
}

// Reset forgets the player: the saved state is removed and a new player starts.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.store != nil {
		if err := e.store.Remove(e.key); err != nil {
			e.logger.Printf("[engine] could not remove %q: %v", e.key, err)
		}
	}
	e.state = e.rules.NewPlayerState()
	e.metrics.observe(e.state)
	e.mu.Unlock()
	e.subs.publish([]Event{{Type: EventReset, Level: 1}})
}

// Restore replaces the player state with s, typically read from a backup.
// A state that cannot be repaired leaves the current one untouched and
// returns an error wrapping ErrCorruptState.
func (e *Engine) Restore(s *PlayerState) error {
	s = s.Clone()
	if err := e.rules.normalize(s); err != nil {
		return err
	}
	return e.mutate("restore", func(cur *PlayerState) ([]Event, error) {
		before := cur.Level
		*cur = *s
		return levelEvents(before, cur.Level), nil
	})
}

// Wait blocks until every scheduled achievement check has completed.
func (e *Engine) Wait() { e.pending.Wait() }
