package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	PrescriptionsCreated prometheus.Counter
	PrescriptionFailures *prometheus.CounterVec
	SignIns              *prometheus.CounterVec
	RoleLookupFailures   prometheus.Counter
	CatalogSubscriptions prometheus.Gauge
	OpenDrafts           prometheus.Gauge
	ActiveSessions       prometheus.Gauge
	DocumentChanges      *prometheus.CounterVec

	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. A nil reg leaves them
// unregistered, which keeps tests free of duplicate registration panics.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PrescriptionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prescriptions_created_total",
			Help:      "Total number of prescriptions persisted",
		}),
		PrescriptionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prescription_submit_failures_total",
			Help:      "Prescription submissions that did not persist",
		}, []string{"reason"}),
		SignIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by result",
		}, []string{"result"}),
		RoleLookupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_lookup_failures_total",
			Help:      "Role lookups that failed and resolved to no role",
		}),
		CatalogSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_subscriptions_active",
			Help:      "Open medicine catalog subscriptions",
		}),
		OpenDrafts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prescription_drafts_open",
			Help:      "Prescription drafts currently being authored",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Client sessions held in memory",
		}),
		DocumentChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_changes_total",
			Help:      "Change notices seen on the change feed",
		}, []string{"collection", "op"}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PrescriptionsCreated,
			m.PrescriptionFailures,
			m.SignIns,
			m.RoleLookupFailures,
			m.CatalogSubscriptions,
			m.OpenDrafts,
			m.ActiveSessions,
			m.DocumentChanges,
			m.DatabaseOperations,
			m.DatabaseLatency,
		)
	}

	return m
}
