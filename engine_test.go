package moneyhero

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewEngine_Defaults(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s := e.State()
	want := &PlayerState{
		PlayerName:           "Hero",
		Money:                D("0"),
		Debt:                 D("0"),
		Level:                1,
		Exp:                  0,
		ExpToNextLevel:       100,
		PercentLevel:         0,
		UnlockedAchievements: []string{},
		TransactionHistory:   []Transaction{},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("new state mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEngine_InvalidRules(t *testing.T) {
	r := DefaultRules()
	r.BaseExp = 0
	if _, err := NewEngine(nil, WithRules(r)); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("NewEngine() = %v, want ErrInvalidRules", err)
	}
}

func TestEngine_IncomeThenExpense(t *testing.T) {
	e, _, _ := newTestEngine(t, WithCatalog(emptyCatalog(t)))

	income, err := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("500")))
	if err != nil {
		t.Fatalf("AddTransaction(income) unexpected error: %v", err)
	}
	if income.ExpGained != 50 || income.BattleResult != Victory || income.ID != "tx1" {
		t.Errorf("income = %+v", income)
	}
	s := e.State()
	if !s.Money.Equal(D("500")) || s.Exp != 50 || s.Level != 1 || s.PercentLevel != 50 {
		t.Errorf("after income: money %s exp %d level %d percent %d", s.Money, s.Exp, s.Level, s.PercentLevel)
	}

	expense, err := e.AddTransaction(NewExpense(day("2025-03-02"), "Rent", "housing", D("700")))
	if err != nil {
		t.Fatalf("AddTransaction(expense) unexpected error: %v", err)
	}
	if expense.ExpLost != 14 || expense.BattleResult != Critical {
		t.Errorf("expense = %+v", expense)
	}
	s = e.State()
	if !s.Money.IsZero() || !s.Debt.Equal(D("200")) || s.Exp != 36 {
		t.Errorf("after expense: money %s debt %s exp %d", s.Money, s.Debt, s.Exp)
	}
}

func TestEngine_AddTransaction_Invalid(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	tests := []Transaction{
		{Type: "transfer", Amount: D("10")},
		{Type: Income, Amount: D("0")},
		{Type: Expense, Amount: D("-5")},
	}
	for _, tx := range tests {
		if _, err := e.AddTransaction(tx); !errors.Is(err, ErrInvalidTransaction) {
			t.Errorf("AddTransaction(%s %s) = %v, want ErrInvalidTransaction", tx.Type, tx.Amount, err)
		}
	}
	if len(e.State().TransactionHistory) != 0 || len(sched.queue) != 0 {
		t.Errorf("rejected transactions left traces")
	}
}

func TestEngine_AddTransaction_DefaultsToToday(t *testing.T) {
	e, _, _ := newTestEngine(t)
	tx, err := e.AddTransaction(Transaction{Type: Income, Name: "Tip", Amount: D("5")})
	if err != nil {
		t.Fatalf("AddTransaction() unexpected error: %v", err)
	}
	if tx.Date.IsZero() {
		t.Errorf("AddTransaction() kept a zero date")
	}
}

func TestEngine_AddTransaction_FailureRestoresState(t *testing.T) {
	calls := 0
	ids := func() string {
		calls++
		if calls == 2 {
			panic("id generator exhausted")
		}
		return "ok"
	}
	e, sched, store := newTestEngine(t, WithIDGenerator(ids))
	if _, err := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("500"))); err != nil {
		t.Fatalf("first AddTransaction() unexpected error: %v", err)
	}
	before := e.State()
	saved, _ := store.Raw(DefaultKey)

	_, err := e.AddTransaction(NewIncome(day("2025-03-02"), "Bonus", "business", D("5000")))
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("AddTransaction() = %v, want ErrTransactionFailed", err)
	}
	if diff := cmp.Diff(before, e.State()); diff != "" {
		t.Errorf("failed AddTransaction changed the state (-want +got):\n%s", diff)
	}
	if got, _ := store.Raw(DefaultKey); string(got) != string(saved) {
		t.Errorf("failed AddTransaction was saved")
	}
	if len(sched.queue) != 1 {
		t.Errorf("scheduled %d achievement checks, want 1", len(sched.queue))
	}
}

func TestEngine_DeleteTransaction(t *testing.T) {
	e, _, _ := newTestEngine(t, WithCatalog(emptyCatalog(t)))
	a, _ := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("1500")))
	b, _ := e.AddTransaction(NewExpense(day("2025-03-02"), "Groceries", "food", D("200")))
	c, _ := e.AddTransaction(NewIncome(day("2025-03-03"), "Gift", "gift", D("40")))

	if err := e.DeleteTransaction(b.ID); err != nil {
		t.Fatalf("DeleteTransaction() unexpected error: %v", err)
	}

	other, _, _ := newTestEngine(t, WithCatalog(emptyCatalog(t)))
	other.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("1500")))
	other.AddTransaction(NewIncome(day("2025-03-03"), "Gift", "gift", D("40")))

	if diff := cmp.Diff(progression(other.State()), progression(e.State())); diff != "" {
		t.Errorf("delete mismatch (-never added +deleted):\n%s", diff)
	}
	var ids []string
	for _, tx := range e.State().TransactionHistory {
		ids = append(ids, tx.ID)
	}
	if want := []string{a.ID, c.ID}; !slices.Equal(ids, want) {
		t.Errorf("history = %v, want %v", ids, want)
	}
	if _, ok := e.Transaction(b.ID); ok {
		t.Errorf("Transaction(%s) still found", b.ID)
	}
}

func TestEngine_DeleteTransaction_Unknown(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("1500")))
	before := e.State()
	if err := e.DeleteTransaction("missing"); err != nil {
		t.Errorf("DeleteTransaction(missing) = %v, want nil", err)
	}
	if diff := cmp.Diff(before, e.State()); diff != "" {
		t.Errorf("DeleteTransaction(missing) changed the state (-want +got):\n%s", diff)
	}
}

func TestEngine_DeleteTransaction_KeepsAchievementRewards(t *testing.T) {
	c, _ := NewCatalog(Achievement{
		ID:        "first",
		Condition: func(s PlayerState) bool { return len(s.TransactionHistory) > 0 },
		Reward:    Reward{Exp: 30},
	})
	e, sched, _ := newTestEngine(t, WithCatalog(c))
	e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("500")))
	sched.run()
	tx, _ := e.AddTransaction(NewIncome(day("2025-03-02"), "Gift", "gift", D("100")))
	sched.run()
	if got := e.State().Exp; got != 50+30+10 {
		t.Fatalf("exp before delete = %d, want 90", got)
	}

	if err := e.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() unexpected error: %v", err)
	}
	if got := e.State().Exp; got != 50+30 {
		t.Errorf("exp after delete = %d, want 80", got)
	}
}

func TestEngine_CheckAchievements(t *testing.T) {
	c, _ := NewCatalog(Achievement{
		ID:        "first",
		Condition: func(s PlayerState) bool { return len(s.TransactionHistory) > 0 },
		Reward:    Reward{Exp: 60},
	})
	e, sched, _ := newTestEngine(t, WithCatalog(c))
	e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("500")))

	if got := e.State().UnlockedAchievements; len(got) != 0 {
		t.Fatalf("achievements unlocked before the hook ran: %v", got)
	}
	sched.run()
	s := e.State()
	if !slices.Equal(s.UnlockedAchievements, []string{"first"}) {
		t.Errorf("unlocked = %v, want [first]", s.UnlockedAchievements)
	}
	if s.Level != 2 || s.Exp != 10 {
		t.Errorf("after reward: level %d exp %d, want level 2 exp 10", s.Level, s.Exp)
	}
	if got := e.CheckAchievements(); len(got) != 0 {
		t.Errorf("second CheckAchievements() = %v, want nothing", got)
	}

	var unlocked []AchievementStatus
	for _, st := range e.Achievements() {
		if st.Unlocked {
			unlocked = append(unlocked, st)
		}
	}
	if len(unlocked) != 1 || unlocked[0].ID != "first" {
		t.Errorf("Achievements() unlocked = %+v", unlocked)
	}
}

func TestEngine_GoScheduler(t *testing.T) {
	c, _ := NewCatalog(Achievement{ID: "any", Condition: func(PlayerState) bool { return true }})
	e, err := NewEngine(NewMemoryStore(), WithCatalog(c), WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("10")))
		}()
	}
	wg.Wait()
	e.Wait()
	s := e.State()
	if len(s.TransactionHistory) != 20 {
		t.Errorf("history has %d transactions, want 20", len(s.TransactionHistory))
	}
	if !slices.Equal(s.UnlockedAchievements, []string{"any"}) {
		t.Errorf("unlocked = %v, want [any]", s.UnlockedAchievements)
	}
	if !s.Money.Equal(D("200")) || s.Exp != 20 {
		t.Errorf("money %s exp %d, want 200 and 20", s.Money, s.Exp)
	}
}

func TestEngine_WaitDuringAddTransaction(t *testing.T) {
	c, _ := NewCatalog(Achievement{ID: "any", Condition: func(PlayerState) bool { return true }})
	e, err := NewEngine(nil, WithCatalog(c), WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 50 {
			e.Wait()
		}
	}()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("10"))); err != nil {
				t.Errorf("AddTransaction() unexpected error: %v", err)
				return
			}
			e.Wait()
			if !e.State().Unlocked("any") {
				t.Errorf("Wait() returned before the achievement check")
			}
		}()
	}
	wg.Wait()
	<-done
}

func TestEngine_Achievement(t *testing.T) {
	e, _, _ := newTestEngine(t)
	a, err := e.Achievement("first_blood")
	if err != nil || a.Unlocked || a.Reward.Exp != 10 {
		t.Errorf("Achievement(first_blood) = %+v, %v, want a locked +10 achievement", a, err)
	}
	if _, err := e.Achievement("dragon_slayer"); !errors.Is(err, ErrUnknownAchievement) {
		t.Errorf("Achievement(dragon_slayer) error = %v, want %v", err, ErrUnknownAchievement)
	}
}

func TestEngine_MoneyAndExp(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if o := e.AddMoney(D("500")); o.GainedExp != 50 {
		t.Errorf("AddMoney(500) = %+v, want 50 gained", o)
	}
	if o := e.SpendMoney(D("700")); o.LostExp != 14 || !o.IsDebt {
		t.Errorf("SpendMoney(700) = %+v, want 14 lost in debt", o)
	}
	if o := e.AddMoney(D("150")); o.GainedExp != 0 {
		t.Errorf("AddMoney(150) in debt = %+v, want nothing gained", o)
	}
	e.AddExp(100)
	e.LoseExp(30)
	s := e.State()
	if !s.Debt.Equal(D("50")) || s.Level != 2 || s.Exp != 6 {
		t.Errorf("state = debt %s level %d exp %d, want debt 50 level 2 exp 6", s.Debt, s.Level, s.Exp)
	}
	if len(s.TransactionHistory) != 0 {
		t.Errorf("direct money movements were recorded as transactions")
	}
}

func TestEngine_SetPlayerName(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetPlayerName("  <b>Conan</b> ")
	if got := e.State().PlayerName; got != "bConan/b" {
		t.Errorf("PlayerName = %q, want %q", got, "bConan/b")
	}
	e.SetPlayerName("   ")
	if got := e.State().PlayerName; got != "bConan/b" {
		t.Errorf("blank name replaced the name with %q", got)
	}
}

func TestEngine_Persistence(t *testing.T) {
	store := NewMemoryStore()
	e, err := NewEngine(store, WithKey("k"), WithScheduler(&manualScheduler{}), WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	e.SetPlayerName("Conan")
	e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("1234.56")))

	reloaded, err := NewEngine(store, WithKey("k"), WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	if diff := cmp.Diff(e.State(), reloaded.State()); diff != "" {
		t.Errorf("reloaded state mismatch (-saved +loaded):\n%s", diff)
	}

	e.Reset()
	if _, ok := store.Raw("k"); ok {
		t.Errorf("Reset() kept the saved state")
	}
	if s := e.State(); s.PlayerName != DefaultPlayerName || len(s.TransactionHistory) != 0 {
		t.Errorf("Reset() state = %+v", s)
	}
}

func TestEngine_CorruptedStore(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw(DefaultKey, []byte(`{"playerName": 12`))
	e, err := NewEngine(store, WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	if s := e.State(); s.Level != 1 || s.PlayerName != DefaultPlayerName {
		t.Errorf("corrupted store did not start a new player: %+v", s)
	}
}

func TestEngine_LevelOutOfRange(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw(DefaultKey, []byte(`{"playerName":"Conan","money":10,"debt":0,"level":50000000,"exp":0}`))
	e, err := NewEngine(store, WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	s := e.State()
	if s.Level != 1 || s.PlayerName != DefaultPlayerName {
		t.Errorf("out of range level did not start a new player: %+v", s)
	}

	e.SetPlayerName("Conan")
	bad := e.State()
	bad.Level = MaxLevel + 1
	if err := e.Restore(bad); !errors.Is(err, ErrCorruptState) {
		t.Errorf("Restore() error = %v, want %v", err, ErrCorruptState)
	}
	if got := e.State(); got.Level != 1 || got.PlayerName != "Conan" {
		t.Errorf("Restore() changed the state to %+v", got)
	}
}

func TestEngine_NormalizesLoadedState(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw(DefaultKey, []byte(`{"playerName":"Conan","money":10,"debt":0,"level":0,"exp":250,"expToNextLevel":3}`))
	e, _ := NewEngine(store, WithLogger(quietLogger))
	s := e.State()
	// 250 = 100 + 110 + 40
	if s.Level != 3 || s.Exp != 40 || s.ExpToNextLevel != 121 {
		t.Errorf("normalized state = level %d exp %d/%d, want level 3 exp 40/121", s.Level, s.Exp, s.ExpToNextLevel)
	}
	checkInvariants(t, DefaultRules(), s)
}

type failingStore struct{}

func (failingStore) Load(string) (*PlayerState, error) { return nil, errors.New("disk on fire") }
func (failingStore) Save(string, *PlayerState) error   { return errors.New("disk on fire") }
func (failingStore) Remove(string) error               { return errors.New("disk on fire") }

func TestEngine_StoreErrorsAreTolerated(t *testing.T) {
	e, err := NewEngine(failingStore{}, WithLogger(quietLogger), WithScheduler(&manualScheduler{}))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	if _, err := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("500"))); err != nil {
		t.Errorf("AddTransaction() = %v, want store errors to be ignored", err)
	}
	if got := e.State().Exp; got != 50 {
		t.Errorf("exp = %d, want 50", got)
	}
	e.Reset()
}

func TestEngine_MutateRecovers(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, _, _ := newTestEngine(t, WithMetrics(NewMetrics(reg)))
	e.AddMoney(D("100"))
	before := e.State()

	err := e.mutate("explode", func(s *PlayerState) ([]Event, error) {
		s.Money = D("1000000")
		panic("boom")
	})
	if !errors.Is(err, ErrEngineFault) {
		t.Errorf("mutate() = %v, want ErrEngineFault", err)
	}
	if diff := cmp.Diff(before, e.State()); diff != "" {
		t.Errorf("panicking mutation changed the state (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(e.metrics.Faults.WithLabelValues("explode")); got != 1 {
		t.Errorf("faults = %v, want 1", got)
	}
}

func TestEngine_Events(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	var got []Event
	cancel := e.Subscribe(func(ev Event) { got = append(got, ev) })

	tx, _ := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("1500")))
	sched.run()
	e.AddTransaction(NewExpense(day("2025-03-02"), "Car", "transport", D("5000")))
	sched.run()
	cancel()
	e.DeleteTransaction(tx.ID)

	want := []Event{
		{Type: EventTransactionAdded, TransactionID: "tx1", Level: 2},
		{Type: EventLevelUp, Level: 2},
		{Type: EventAchievementUnlocked, AchievementID: "first_blood", Level: 2},
		{Type: EventAchievementUnlocked, AchievementID: "first_victory", Level: 2},
		{Type: EventAchievementUnlocked, AchievementID: "saver", Level: 2},
		{Type: EventTransactionAdded, TransactionID: "tx2", Level: 1},
		{Type: EventLevelDown, Level: 1},
		{Type: EventAchievementUnlocked, AchievementID: "into_the_red", Level: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e, sched, _ := newTestEngine(t, WithMetrics(m), WithCatalog(emptyCatalog(t)))
	tx, _ := e.AddTransaction(NewIncome(day("2025-03-01"), "Salary", "salary", D("1500")))
	e.AddTransaction(NewExpense(day("2025-03-02"), "Car", "transport", D("2000")))
	sched.run()
	e.DeleteTransaction(tx.ID)

	if got := testutil.ToFloat64(m.Transactions.WithLabelValues("income", "victory")); got != 1 {
		t.Errorf("income transactions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Transactions.WithLabelValues("expense", "critical")); got != 1 {
		t.Errorf("critical transactions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Deletions); got != 1 {
		t.Errorf("deletions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Debt); got != 2000 {
		t.Errorf("debt gauge = %v, want 2000", got)
	}
}
