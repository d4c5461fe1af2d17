package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxEventsCleaned     prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxRetries           *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec

	// Tenant provisioning
	CompaniesProvisioned prometheus.Counter
	UnitsProvisioned     prometheus.Counter
	ProvisioningErrors   *prometheus.CounterVec
	CompaniesTotal       prometheus.Gauge

	// Appointments and telemetry
	Cancellations *prometheus.CounterVec
	VisitsTracked *prometheus.CounterVec

	// Change feed
	FeedDeliveries *prometheus.CounterVec
}

// New creates all application metrics and registers them with reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		OutboxEventsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxEventsCleaned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_cleaned_total",
			Help:      "Total number of processed outbox events removed by retention",
		}),
		OutboxProcessingLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_retry_attempts_total",
			Help:      "Total number of retry attempts for outbox events",
		}, []string{"event_type"}),

		DatabaseOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),

		CompaniesProvisioned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "companies_provisioned_total",
			Help:      "Companies auto-created for new owners",
		}),
		UnitsProvisioned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_provisioned_total",
			Help:      "Default units auto-created for companies without one",
		}),
		ProvisioningErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_errors_total",
			Help:      "Failures during tenant provisioning",
		}, []string{"stage"}),
		CompaniesTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "companies",
			Help:      "Current number of companies",
		}),

		Cancellations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_cancellations_total",
			Help:      "Appointment cancellations by classification",
		}, []string{"kind"}),
		VisitsTracked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_visits_total",
			Help:      "Page visit tracking attempts",
		}, []string{"result"}),

		FeedDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_feed_deliveries_total",
			Help:      "Change feed messages delivered to handlers",
		}, []string{"channel", "result"}),
	}
}
