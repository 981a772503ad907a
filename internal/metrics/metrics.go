package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysisAttemptsTotal counts calls to the inference endpoint by outcome
	// (ok, rate_limited, transport_error, http_error).
	AnalysisAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmxchain",
		Subsystem: "analysis",
		Name:      "attempts_total",
		Help:      "Inference endpoint attempts, labeled by outcome.",
	}, []string{"outcome"})

	// AnalysisResultsTotal counts finished analyses by result kind.
	AnalysisResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmxchain",
		Subsystem: "analysis",
		Name:      "results_total",
		Help:      "Finished image analyses, labeled by result (ok or error kind).",
	}, []string{"result"})

	AnalysisBackoffSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "farmxchain",
		Subsystem: "analysis",
		Name:      "backoff_seconds",
		Help:      "Backoff delay scheduled between inference attempts.",
		Buckets:   []float64{1, 2, 4, 8, 16, 32},
	})

	OrderTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmxchain",
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order status transitions applied, labeled by log and target status.",
	}, []string{"log", "status"})

	OrdersPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmxchain",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders appended, labeled by log.",
	}, []string{"log"})

	SlotNotificationsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "farmxchain",
		Subsystem: "slots",
		Name:      "notifications_dropped_total",
		Help:      "Slot change notifications dropped because a watcher was not keeping up.",
	})

	LedgerEventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "farmxchain",
		Subsystem: "orders",
		Name:      "ledger_events_dropped_total",
		Help:      "Ledger events dropped because a subscriber buffer was full.",
	})
)

// Register registers all collectors with the default registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysisAttemptsTotal,
			AnalysisResultsTotal,
			AnalysisBackoffSeconds,
			OrderTransitionsTotal,
			OrdersPlacedTotal,
			SlotNotificationsDroppedTotal,
			LedgerEventsDroppedTotal,
		)
	})
}
