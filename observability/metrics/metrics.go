package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ga_maintenance_"

	// ResultSuccess and ResultError label completed operations.
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once
	registry     *prometheus.Registry

	generationTotal   *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec

	rowsGenerated *prometheus.CounterVec
	rowsUnhealthy *prometheus.CounterVec

	persistTotal   *prometheus.CounterVec
	persistLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec
)

// Init registers generator run metrics on a private registry.
func Init() {
	registerOnce.Do(func() {
		registry = prometheus.NewRegistry()

		generationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "generation_runs_total",
				Help: "Total synthetic generation runs by mode and result",
			},
			[]string{"mode", "result"},
		)
		generationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "generation_latency_seconds",
				Help:    "Synthetic generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "result"},
		)

		rowsGenerated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_generated_total",
				Help: "Total generated sensor rows by parameter",
			},
			[]string{"parameter"},
		)
		rowsUnhealthy = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_unhealthy_total",
				Help: "Total generated sensor rows below their health threshold by parameter",
			},
			[]string{"parameter"},
		)

		persistTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "persist_batches_total",
				Help: "Total sensor batch inserts by result",
			},
			[]string{"result"},
		)
		persistLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "persist_latency_seconds",
				Help:    "Sensor batch insert latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)

		registry.MustRegister(
			generationTotal,
			generationLatency,
			rowsGenerated,
			rowsUnhealthy,
			persistTotal,
			persistLatency,
			exportTotal,
		)
	})
}

// Registry returns the registry metrics are recorded on, or nil before Init.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveGeneration records a generation run's latency and result.
func ObserveGeneration(mode, result string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if generationTotal != nil {
		generationTotal.WithLabelValues(mode, result).Inc()
	}
	if generationLatency != nil {
		generationLatency.WithLabelValues(mode, result).Observe(duration.Seconds())
	}
}

// AddRows adds generated and unhealthy row counts for a parameter.
func AddRows(parameter string, total, unhealthy int) {
	if parameter == "" {
		parameter = "unknown"
	}
	if rowsGenerated != nil && total > 0 {
		rowsGenerated.WithLabelValues(parameter).Add(float64(total))
	}
	if rowsUnhealthy != nil && unhealthy > 0 {
		rowsUnhealthy.WithLabelValues(parameter).Add(float64(unhealthy))
	}
}

// ObservePersist records a batch insert's latency and result.
func ObservePersist(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if persistTotal != nil {
		persistTotal.WithLabelValues(result).Inc()
	}
	if persistLatency != nil {
		persistLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncExport counts an export by format and result.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if registry == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, registry)
}
