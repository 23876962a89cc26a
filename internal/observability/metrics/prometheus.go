// Package metrics provides Prometheus metrics for the patient registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	RecordsCreated     prometheus.Counter
	RecordsUpdated     prometheus.Counter
	RecordsDeleted     prometheus.Counter
	ValidationFailures prometheus.Counter
	LookupMisses       prometheus.Counter
	SaveFailures       prometheus.Counter
	RecordsTotal       prometheus.Gauge
	RequestDuration    *prometheus.HistogramVec
	EventsConsumed     prometheus.Counter
	AuditEntriesStored prometheus.Counter
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		RecordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_records_created_total",
			Help: "Total patient records created",
		}),
		RecordsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_records_updated_total",
			Help: "Total patient records updated",
		}),
		RecordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_records_deleted_total",
			Help: "Total patient records deleted",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_validation_failures_total",
			Help: "Total requests rejected by schema validation",
		}),
		LookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_lookup_misses_total",
			Help: "Total operations referencing an absent record id",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_store_save_failures_total",
			Help: "Total record set save failures",
		}),
		RecordsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patient_records",
			Help: "Patient records currently in the store",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patient_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "status"}),
		EventsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_events_consumed_total",
			Help: "Total change events consumed by the relay",
		}),
		AuditEntriesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patient_audit_entries_stored_total",
			Help: "Total audit log entries written",
		}),
	}

	prometheus.MustRegister(
		m.RecordsCreated,
		m.RecordsUpdated,
		m.RecordsDeleted,
		m.ValidationFailures,
		m.LookupMisses,
		m.SaveFailures,
		m.RecordsTotal,
		m.RequestDuration,
		m.EventsConsumed,
		m.AuditEntriesStored,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
