package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/de-tools/db-custodian/pkg/models/domain"
)

const (
	namespace = "dbcustodian"
	subsystem = "run"
)

// Metrics exposes the daemon's run counters and per-database gauges.
type Metrics struct {
	RunsTotal        prometheus.Counter
	RunsFailed       prometheus.Counter
	DatabasesChecked prometheus.Counter
	LastRunTimestamp prometheus.Gauge

	Outcomes      *prometheus.CounterVec
	CurrentSizeMB *prometheus.GaugeVec
	TargetSizeMB  *prometheus.GaugeVec
}

func New() *Metrics {
	labels := []string{"database"}

	return &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total",
			Help:      "Total number of capacity check runs",
		}),
		RunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failed_total",
			Help:      "Runs in which at least one database failed",
		}),
		DatabasesChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "databases_checked_total",
			Help:      "Databases inspected across all runs",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_timestamp_seconds",
			Help:      "Unix timestamp of the last finished run",
		}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Per-database outcomes by status",
		}, append(labels, "status")),
		CurrentSizeMB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_current_size_mb",
			Help:      "Last observed database size in MB",
		}, labels),
		TargetSizeMB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_target_size_mb",
			Help:      "Threshold-adjusted maximum size in MB",
		}, labels),
	}
}

// Register registers all collectors with the provided registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.RunsTotal,
		m.RunsFailed,
		m.DatabasesChecked,
		m.LastRunTimestamp,
		m.Outcomes,
		m.CurrentSizeMB,
		m.TargetSizeMB,
	}

	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one finished run.
func (m *Metrics) Observe(report domain.RunReport) {
	m.RunsTotal.Inc()
	if report.Failed() {
		m.RunsFailed.Inc()
	}
	m.DatabasesChecked.Add(float64(len(report.Outcomes)))
	m.LastRunTimestamp.Set(float64(report.FinishedAt.Unix()))

	for _, o := range report.Outcomes {
		m.Outcomes.WithLabelValues(o.Database, string(o.Status)).Inc()
		m.CurrentSizeMB.WithLabelValues(o.Database).Set(o.CurrentSizeMB)
		if o.Status != domain.OutcomeFailed {
			m.TargetSizeMB.WithLabelValues(o.Database).Set(o.TargetSizeMB)
		}
	}
}
