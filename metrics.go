package moneyhero

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the engine activity to Prometheus. A nil *Metrics records
// nothing.
type Metrics struct {
	Transactions *prometheus.CounterVec
	Deletions    prometheus.Counter
	Achievements prometheus.Counter
	Faults       *prometheus.CounterVec
	Level        prometheus.Gauge
	Exp          prometheus.Gauge
	Money        prometheus.Gauge
	Debt         prometheus.Gauge
}

// NewMetrics creates the engine metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moneyhero_transactions_total",
			Help: "Recorded transactions by type and battle result.",
		}, []string{"type", "result"}),
		Deletions: f.NewCounter(prometheus.CounterOpts{
			Name: "moneyhero_transaction_deletions_total",
			Help: "Deleted transactions.",
		}),
		Achievements: f.NewCounter(prometheus.CounterOpts{
			Name: "moneyhero_achievements_unlocked_total",
			Help: "Unlocked achievements.",
		}),
		Faults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moneyhero_engine_faults_total",
			Help: "Recovered failures by engine operation.",
		}, []string{"op"}),
		Level: f.NewGauge(prometheus.GaugeOpts{
			Name: "moneyhero_player_level",
			Help: "Current player level.",
		}),
		Exp: f.NewGauge(prometheus.GaugeOpts{
			Name: "moneyhero_player_exp",
			Help: "Experience accumulated in the current level.",
		}),
		Money: f.NewGauge(prometheus.GaugeOpts{
			Name: "moneyhero_player_money",
			Help: "Cash held by the player.",
		}),
		Debt: f.NewGauge(prometheus.GaugeOpts{
			Name: "moneyhero_player_debt",
			Help: "Debt owed by the player.",
		}),
	}
}

func (m *Metrics) observe(s *PlayerState) {
	if m == nil {
		return
	}
	m.Level.Set(float64(s.Level))
	m.Exp.Set(float64(s.Exp))
	m.Money.Set(s.Money.InexactFloat64())
	m.Debt.Set(s.Debt.InexactFloat64())
}

func (m *Metrics) recorded(tx Transaction) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(string(tx.Type), string(tx.BattleResult)).Inc()
}

func (m *Metrics) deleted() {
	if m == nil {
		return
	}
	m.Deletions.Inc()
}

func (m *Metrics) unlocked(n int) {
	if m == nil {
		return
	}
	m.Achievements.Add(float64(n))
}

func (m *Metrics) fault(op string) {
	if m == nil {
		return
	}
	m.Faults.WithLabelValues(op).Inc()
}
