// Package metrics exposes Prometheus instrumentation for the sync pipeline.
//
//   - sync_runs_total{mode,outcome}: completed store syncs
//   - sync_duration_seconds{mode}: wall time per store sync
//   - sync_records_total{entity,source}: rows upserted per entity and origin
//   - sync_upstream_errors_total{operation}: failed Shopify calls
package metrics

import (
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics implements ports.SyncRecorder on top of a Prometheus registerer
type SyncMetrics struct {
	runs           *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	records        *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
}

// NewSyncMetrics registers the sync collectors with reg
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)

	return &SyncMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_runs_total",
				Help: "Total number of completed store syncs",
			},
			[]string{"mode", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sync_duration_seconds",
				Help:    "Duration of a single store sync in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_records_total",
				Help: "Total number of rows upserted by syncs",
			},
			[]string{"entity", "source"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_upstream_errors_total",
				Help: "Total number of failed Shopify API calls during syncs",
			},
			[]string{"operation"},
		),
	}
}

var _ ports.SyncRecorder = (*SyncMetrics)(nil)

func (m *SyncMetrics) ObserveSync(mode string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.runs.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *SyncMetrics) AddRecords(entity string, source domain.SyncSource, count int) {
	if count <= 0 {
		return
	}
	m.records.WithLabelValues(entity, string(source)).Add(float64(count))
}

func (m *SyncMetrics) IncUpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}
