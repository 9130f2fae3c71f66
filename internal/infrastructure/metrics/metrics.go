// Package metrics exposes the ledger's Prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "creditnexus"

// Ledger groups the ledger's instruments. A nil *Ledger is valid and records
// nothing.
type Ledger struct {
	registry *prometheus.Registry

	ParticipantsOnboarded prometheus.Counter
	LoansIssued           prometheus.Counter
	PrincipalIssued       prometheus.Counter
	Repayments            *prometheus.CounterVec
	OverdueTransitions    prometheus.Counter
	ScoreDelta            prometheus.Histogram
	OperationErrors       *prometheus.CounterVec
}

func New() *Ledger {
	m := &Ledger{
		registry: prometheus.NewRegistry(),
		ParticipantsOnboarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name: "participants_onboarded_total",
			Help: "Participants onboarded",
		}),
		LoansIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name: "loans_issued_total",
			Help: "Loans issued",
		}),
		PrincipalIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name: "principal_issued_units_total",
			Help: "Sum of issued principal",
		}),
		Repayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name: "repayments_total",
			Help: "Recorded repayments by kind (partial, early, on_time, late)",
		}, []string{"kind"}),
		OverdueTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name: "overdue_transitions_total",
			Help: "Loans moved from active to overdue",
		}),
		ScoreDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name:    "repayment_score_delta",
			Help:    "Credit score delta awarded on full repayment",
			Buckets: []float64{0, 10, 20, 30, 40, 50},
		}),
		OperationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger",
			Name: "operation_errors_total",
			Help: "Failed ledger operations by operation",
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.ParticipantsOnboarded, m.LoansIssued, m.PrincipalIssued, m.Repayments,
		m.OverdueTransitions, m.ScoreDelta, m.OperationErrors,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Ledger) Onboarded() {
	if m == nil {
		return
	}
	m.ParticipantsOnboarded.Inc()
}

func (m *Ledger) Issued(principal float64) {
	if m == nil {
		return
	}
	m.LoansIssued.Inc()
	m.PrincipalIssued.Add(principal)
}

// Repaid records a repayment; kind is "partial" or a full-repayment outcome.
func (m *Ledger) Repaid(kind string, delta int, full bool) {
	if m == nil {
		return
	}
	m.Repayments.WithLabelValues(kind).Inc()
	if full {
		m.ScoreDelta.Observe(float64(delta))
	}
}

func (m *Ledger) Overdue(n int) {
	if m == nil || n == 0 {
		return
	}
	m.OverdueTransitions.Add(float64(n))
}

func (m *Ledger) Failed(op string) {
	if m == nil {
		return
	}
	m.OperationErrors.WithLabelValues(op).Inc()
}
