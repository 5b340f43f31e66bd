package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the netlist core
type Registry struct {
	// Parser metrics
	ParseTotal    prometheus.Counter
	ParseDuration prometheus.Histogram
	ParsedLines   prometheus.Counter
	SkippedLines  prometheus.Counter
	ParsedDevices *prometheus.CounterVec

	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
	RuleErrorsTotal    *prometheus.CounterVec

	// Layer store metrics
	LayerOpsTotal   *prometheus.CounterVec
	DesignVersion   prometheus.Gauge
	LayersTotal     prometheus.Gauge
	ComponentsTotal prometheus.Gauge

	// JSON adapter metrics
	ApplyTotal  *prometheus.CounterVec
	ExportTotal prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{registry: reg}
	r.initParserMetrics()
	r.initValidationMetrics()
	r.initLayerMetrics()
	r.initAdapterMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initParserMetrics() {
	r.ParseTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "spicegraph_parse_total",
			Help: "Total number of netlist parse calls",
		},
	)
	r.ParseDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spicegraph_parse_duration_seconds",
			Help:    "Netlist parse duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)
	r.ParsedLines = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "spicegraph_parsed_lines_total",
			Help: "Total number of netlist lines parsed into components",
		},
	)
	r.SkippedLines = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "spicegraph_skipped_lines_total",
			Help: "Total number of netlist lines skipped as directives or comments",
		},
	)
	r.ParsedDevices = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "spicegraph_parsed_devices_total",
			Help: "Total number of parsed devices by class",
		},
		[]string{"class"},
	)
}

func (r *Registry) initValidationMetrics() {
	r.ValidationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "spicegraph_validations_total",
			Help: "Total number of validation runs",
		},
		[]string{"phase", "outcome"},
	)
	r.ValidationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spicegraph_validation_duration_seconds",
			Help:    "Validation run duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"phase"},
	)
	r.RuleErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "spicegraph_rule_errors_total",
			Help: "Total number of rule violations by rule",
		},
		[]string{"rule"},
	)
}

func (r *Registry) initLayerMetrics() {
	r.LayerOpsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "spicegraph_layer_operations_total",
			Help: "Total number of layer store operations",
		},
		[]string{"operation", "status"},
	)
	r.DesignVersion = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "spicegraph_design_version",
			Help: "Current design version counter",
		},
	)
	r.LayersTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "spicegraph_layers_total",
			Help: "Current number of layers in the design",
		},
	)
	r.ComponentsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "spicegraph_components_total",
			Help: "Current number of components across all layers",
		},
	)
}

func (r *Registry) initAdapterMetrics() {
	r.ApplyTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "spicegraph_spec_apply_total",
			Help: "Total number of JSON specification applies",
		},
		[]string{"status"},
	)
	r.ExportTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "spicegraph_spec_export_total",
			Help: "Total number of JSON specification exports",
		},
	)
}

// RecordParse records one parse call with its duration and line accounting
func (r *Registry) RecordParse(duration time.Duration, processed, skipped int, classCounts map[string]int) {
	r.ParseTotal.Inc()
	r.ParseDuration.Observe(duration.Seconds())
	r.ParsedLines.Add(float64(processed))
	r.SkippedLines.Add(float64(skipped))
	for class, n := range classCounts {
		r.ParsedDevices.WithLabelValues(class).Add(float64(n))
	}
}

// RecordValidation records one validation run
func (r *Registry) RecordValidation(phase string, pass bool, duration time.Duration) {
	outcome := "fail"
	if pass {
		outcome = "pass"
	}
	r.ValidationsTotal.WithLabelValues(phase, outcome).Inc()
	r.ValidationDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordLayerOp records one layer store operation
func (r *Registry) RecordLayerOp(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.LayerOpsTotal.WithLabelValues(operation, status).Inc()
}

// UpdateDesignGauges refreshes the design-level gauges
func (r *Registry) UpdateDesignGauges(version uint64, layers, components int) {
	r.DesignVersion.Set(float64(version))
	r.LayersTotal.Set(float64(layers))
	r.ComponentsTotal.Set(float64(components))
}
