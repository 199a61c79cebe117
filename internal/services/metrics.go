package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Document store metrics
	DocumentLoads *prometheus.CounterVec
	DocumentSaves *prometheus.CounterVec

	// Operation errors by component and error kind
	OperationErrors *prometheus.CounterVec

	// Compression metrics
	Compressions     prometheus.Counter
	CompressionRatio prometheus.Histogram

	// Analyzer runs
	AnalyzerRuns prometheus.Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			// Document loads by component (counter - only goes up)
			DocumentLoads: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "supertavern_document_loads_total",
				Help: "Total number of document loads by component",
			}, []string{"component"}),

			// Document saves by component
			DocumentSaves: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "supertavern_document_saves_total",
				Help: "Total number of atomic document saves by component",
			}, []string{"component"}),

			// Operation errors by component and kind
			OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "supertavern_operation_errors_total",
				Help: "Total number of failed store operations by component and error kind",
			}, []string{"component", "kind"}),

			// Compression runs
			Compressions: promauto.NewCounter(prometheus.CounterOpts{
				Name: "supertavern_compressions_total",
				Help: "Total number of context compressions performed",
			}),

			// Achieved retention ratio per compression
			CompressionRatio: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "supertavern_compression_ratio",
				Help:    "Configured retention ratio of performed compressions",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			}),

			// Analyzer invocations
			AnalyzerRuns: promauto.NewCounter(prometheus.CounterOpts{
				Name: "supertavern_analyzer_runs_total",
				Help: "Total number of interaction analyzer runs",
			}),
		}
	})
	return globalMetrics
}

// GetMetrics returns the global metrics instance (nil when metrics are
// disabled, e.g. in tests)
func GetMetrics() *Metrics {
	return globalMetrics
}

func recordDocLoad(component string) {
	if globalMetrics != nil {
		globalMetrics.DocumentLoads.WithLabelValues(component).Inc()
	}
}

func recordDocSave(component string) {
	if globalMetrics != nil {
		globalMetrics.DocumentSaves.WithLabelValues(component).Inc()
	}
}

func recordOpError(component, kind string) {
	if globalMetrics != nil {
		globalMetrics.OperationErrors.WithLabelValues(component, kind).Inc()
	}
}

func recordCompression(ratio float64) {
	if globalMetrics != nil {
		globalMetrics.Compressions.Inc()
		globalMetrics.CompressionRatio.Observe(ratio)
	}
}

func recordAnalyzerRun() {
	if globalMetrics != nil {
		globalMetrics.AnalyzerRuns.Inc()
	}
}
