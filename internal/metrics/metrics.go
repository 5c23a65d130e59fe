// Package metrics defines the Prometheus collectors for force scaling,
// registered on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScaleFactor = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forcescale_scale_factor",
		Help: "Current force/stress scale factor",
	})

	FiniteStreak = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forcescale_finite_streak",
		Help: "Consecutive finite gradient computations since the last update",
	})

	ScaleBackoffs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forcescale_scale_backoffs_total",
		Help: "Total number of times the scale factor was reduced",
	})

	ScaleGrowths = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forcescale_scale_growths_total",
		Help: "Total number of times the scale factor was increased",
	})

	NonFiniteResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forcescale_nonfinite_results_total",
		Help: "Total number of gradient attempts that produced NaN or Inf",
	}, []string{"kind"})

	NonFiniteValues = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forcescale_nonfinite_values_total",
		Help: "Total number of NaN/Inf gradient elements detected",
	}, []string{"kind", "type"})

	RetryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forcescale_retry_exhausted_total",
		Help: "Total number of calls that gave up with a non-finite result",
	}, []string{"kind"})

	AttemptsPerCall = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forcescale_attempts_per_call",
		Help:    "Distribution of gradient attempts per retrying call",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 50},
	})
)

func RecordScale(scale float64, streak int) {
	ScaleFactor.Set(scale)
	FiniteStreak.Set(float64(streak))
}

func RecordNonFinite(kind string, nanCount, infCount int) {
	NonFiniteResults.WithLabelValues(kind).Inc()
	if nanCount > 0 {
		NonFiniteValues.WithLabelValues(kind, "nan").Add(float64(nanCount))
	}
	if infCount > 0 {
		NonFiniteValues.WithLabelValues(kind, "inf").Add(float64(infCount))
	}
}

func RecordRetryExhausted(kind string) {
	RetryExhausted.WithLabelValues(kind).Inc()
}

func RecordAttempts(attempts int) {
	AttemptsPerCall.Observe(float64(attempts))
}
