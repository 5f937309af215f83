package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ruteri/tokenbound-service-registry/common"
)

var (
	// CreationsTotal counts first-time service deployments (one per creation record).
	CreationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "registry",
		Name:      "creations_total",
		Help:      "Total number of first-time service creations",
	})

	// IdempotentCreationsTotal counts create calls that found the target address
	// already holding the expected artifact bytes.
	IdempotentCreationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "registry",
		Name:      "idempotent_creations_total",
		Help:      "Total number of create calls resolved as idempotent hits",
	})

	// FailedCreationsTotal counts create calls rejected for invalid bindings or
	// addresses occupied by foreign code.
	FailedCreationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "registry",
		Name:      "failed_creations_total",
		Help:      "Total number of failed create calls",
	})

	// CreateDurationSeconds observes end-to-end create latency including ledger access.
	CreateDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: common.PackageName,
		Subsystem: "registry",
		Name:      "create_duration_seconds",
		Help:      "Create call duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	// ArchiveFailuresTotal counts artifact archival attempts that failed after a
	// committed creation. Archival is best effort and never affects create results.
	ArchiveFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "archive",
		Name:      "failures_total",
		Help:      "Total number of failed artifact archival attempts",
	})
)
