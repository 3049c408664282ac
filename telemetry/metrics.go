package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
)

const namespace = "olake_pager"

// Metrics collects per entity counters for one process. They can be
// exported as a node_exporter textfile at the end of a run.
type Metrics struct {
	registry *prometheus.Registry
	queries  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Page queries issued per entity.",
		}, []string{"entity"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows written per entity and operation.",
		}, []string{"entity", "op"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Entity imports by process and result.",
		}, []string{"entity", "process", "result"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last import per entity.",
		}, []string{"entity"}),
	}
	m.registry.MustRegister(m.queries, m.rows, m.runs, m.duration)
	return m
}

// QueryCounter returns the counter a cursor of entity increments per issued page
func (m *Metrics) QueryCounter(entity string) cursor.QueryCounter {
	return m.queries.WithLabelValues(entity)
}

// AddRows records n rows of op written for entity
func (m *Metrics) AddRows(entity, op string, n int64) {
	m.rows.WithLabelValues(entity, op).Add(float64(n))
}

// ObserveRun records the outcome of one entity import
func (m *Metrics) ObserveRun(stats *types.ImportStats, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failed"
	}
	m.runs.WithLabelValues(stats.Entity, stats.Process, result).Inc()
	m.duration.WithLabelValues(stats.Entity).Set(elapsed.Seconds())
}

// WriteToTextfile dumps every metric in the text exposition format
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %s", path, err)
	}
	return nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
