package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	decisionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zuul_decisions_total",
		Help: "Total number of requests evaluated by the decision pipeline",
	})
	deniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zuul_denied_total",
		Help: "Total number of requests denied by a rule",
	})
	suppressedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zuul_suppressed_total",
		Help: "Total number of audit records suppressed by an ignore entry",
	})
	storedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zuul_records_stored_total",
		Help: "Total number of audit records handed to storage",
	})
	flushesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zuul_cache_flushes_total",
		Help: "Total number of write-behind cache flushes",
	})
	flushErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zuul_cache_flush_errors_total",
		Help: "Total number of failed write-behind cache flushes",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(decisionsTotal, deniedTotal, suppressedTotal,
		storedTotal, flushesTotal, flushErrorsTotal)
}

// IncDecision increments the evaluated requests counter.
func IncDecision() { decisionsTotal.Inc() }

// IncDenied increments the denied requests counter.
func IncDenied() { deniedTotal.Inc() }

// IncSuppressed increments the suppressed records counter.
func IncSuppressed() { suppressedTotal.Inc() }

// IncStored increments the stored records counter.
func IncStored() { storedTotal.Inc() }

// IncFlush increments the cache flush counter.
func IncFlush() { flushesTotal.Inc() }

// IncFlushError increments the failed flush counter.
func IncFlushError() { flushErrorsTotal.Inc() }
