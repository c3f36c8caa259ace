package bank

import "github.com/prometheus/client_golang/prometheus"

// Posting outcomes reported by the ledger.
const (
	OutcomePosted          = "posted"
	OutcomeAccountNotFound = "account_not_found"
	OutcomeInvalid         = "invalid"
	OutcomeBalanceFailed   = "balance_failed"
	OutcomeError           = "error"
)

// Compensation results reported by the ledger.
const (
	CompensationRolledBack = "rolled_back"
	CompensationFailed     = "failed"
)

// Metrics counts ledger activity. A nil *Metrics records nothing.
type Metrics struct {
	Postings      *prometheus.CounterVec
	Compensations *prometheus.CounterVec
}

// NewMetrics creates the ledger counters and registers them on reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "ledger",
			Name:      "postings_total",
			Help:      "Movement postings by outcome.",
		}, []string{"outcome"}),
		Compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "ledger",
			Name:      "compensations_total",
			Help:      "Movement rollbacks after a failed balance update, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Postings, m.Compensations)
	}
	return m
}

func (m *Metrics) posting(outcome string) {
	if m == nil {
		return
	}
	m.Postings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) compensation(result string) {
	if m == nil {
		return
	}
	m.Compensations.WithLabelValues(result).Inc()
}
