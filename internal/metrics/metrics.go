package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Workflow
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Workflow operations by outcome",
		},
		[]string{"op", "outcome"}, // create|approve|reject|delete ; ok|<error code>
	)

	// Store
	StoreReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_store_reloads_total",
			Help: "Full reloads of the transaction set",
		},
		[]string{"result"},
	)
	ApprovedBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_approved_balance",
			Help: "Approved-only balance in the smallest currency unit",
		},
	)
	PendingTransactions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_pending_transactions",
			Help: "Transactions awaiting approval",
		},
	)

	// Change feed
	ChangeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_change_events_total",
			Help: "Change notifications published",
		},
		[]string{"result"},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	// HTTP
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(OperationsTotal)
		prometheus.MustRegister(StoreReloads)
		prometheus.MustRegister(ApprovedBalance)
		prometheus.MustRegister(PendingTransactions)
		prometheus.MustRegister(ChangeEvents)
		prometheus.MustRegister(WorkerQueueDepth)
		prometheus.MustRegister(HTTPDuration)
	})
}
