// Copyright 2025 Certen Protocol
//
// Prometheus metrics for the HTM aggregation service.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's Prometheus collectors.
type Registry struct {
	WorldsCreated   prometheus.Counter
	TrixelsCreated  prometheus.Counter
	UpdatesAccepted prometheus.Counter
	UpdatesRejected *prometheus.CounterVec
	BatchesClosed   prometheus.Counter
	BatchSize       prometheus.Histogram
}

// NewRegistry builds and registers the service's collectors against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		WorldsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htm_worlds_created_total",
			Help: "Number of worlds created.",
		}),
		TrixelsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htm_trixels_created_total",
			Help: "Number of trixel/ancestor chains created.",
		}),
		UpdatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htm_updates_accepted_total",
			Help: "Number of update_trixel calls accepted.",
		}),
		UpdatesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "htm_updates_rejected_total",
			Help: "Number of update_trixel calls rejected, by error code.",
		}, []string{"code"}),
		BatchesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htm_batches_closed_total",
			Help: "Number of update batches closed.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "htm_batch_size",
			Help:    "Size of closed update batches.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	reg.MustRegister(r.WorldsCreated, r.TrixelsCreated, r.UpdatesAccepted, r.UpdatesRejected, r.BatchesClosed, r.BatchSize)
	return r
}

// Handler returns the HTTP handler serving the metrics registry in the
// Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
