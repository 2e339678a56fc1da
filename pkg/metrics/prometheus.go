package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for one pipeline process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Data metrics
	rowsLoaded   *prometheus.GaugeVec
	featureCount prometheus.Gauge

	// Stage metrics
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec

	// Model and outcome metrics
	groupRate     *prometheus.GaugeVec
	treesTrained  prometheus.Gauge
	predictions   *prometheus.GaugeVec
	runs          *prometheus.CounterVec
	lastSuccessTS prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry it
// registers on a private registry of its own.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "survival",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.rowsLoaded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_loaded",
		Help:        "Rows read from each input dataset",
		ConstLabels: labels,
	}, []string{"dataset"})

	m.featureCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "encoded_features",
		Help:        "Columns of the encoded training matrix",
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Wall time of each pipeline stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_errors_total",
		Help:        "Pipeline stages that failed",
		ConstLabels: labels,
	}, []string{"stage"})

	m.groupRate = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "group_survival_rate",
		Help:        "Observed survival rate per exploratory group",
		ConstLabels: labels,
	}, []string{"group"})

	m.treesTrained = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "trees_trained",
		Help:        "Trees in the fitted forest",
		ConstLabels: labels,
	})

	m.predictions = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "predictions",
		Help:        "Predicted outcomes per label",
		ConstLabels: labels,
	}, []string{"label"})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Pipeline runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.lastSuccessTS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last successful run",
		ConstLabels: labels,
	})
}

// SetRowsLoaded records the row count of a dataset.
func (m *Manager) SetRowsLoaded(dataset string, rows int) {
	if m.enabled {
		m.rowsLoaded.WithLabelValues(dataset).Set(float64(rows))
	}
}

// SetFeatureCount records the encoded feature width.
func (m *Manager) SetFeatureCount(n int) {
	if m.enabled {
		m.featureCount.Set(float64(n))
	}
}

// ObserveStage records how long a stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// RecordStageError counts a failed stage.
func (m *Manager) RecordStageError(stage string) {
	if m.enabled {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

// SetGroupRate records an exploratory survival rate.
func (m *Manager) SetGroupRate(group string, rate float64) {
	if m.enabled {
		m.groupRate.WithLabelValues(group).Set(rate)
	}
}

// SetTreesTrained records the size of the fitted ensemble.
func (m *Manager) SetTreesTrained(n int) {
	if m.enabled {
		m.treesTrained.Set(float64(n))
	}
}

// SetPredictions records how many rows received label.
func (m *Manager) SetPredictions(label string, n int) {
	if m.enabled {
		m.predictions.WithLabelValues(label).Set(float64(n))
	}
}

// RecordRun counts a finished run; outcome is "success" or "failure".
func (m *Manager) RecordRun(outcome string) {
	if m.enabled {
		m.runs.WithLabelValues(outcome).Inc()
	}
}

// MarkSuccess stamps the last successful run.
func (m *Manager) MarkSuccess(at time.Time) {
	if m.enabled {
		m.lastSuccessTS.Set(float64(at.Unix()))
	}
}

// Registry returns the registry the manager exports from.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes every registered metric to path in the text
// exposition format, for collection by a node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// Default returns the global metrics manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the global registry.
func GetRegistry() *prometheus.Registry { return customRegistry }

// WriteTextfile exports the global registry to path.
func WriteTextfile(path string) error { return globalManager.WriteTextfile(path) }
