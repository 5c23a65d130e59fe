package scaler

import "github.com/born-ml/forcescale/internal/metrics"

// MetricsObserver records controller signals as Prometheus metrics.
// Backoffs and growths are derived from successive ScaleUpdated states, so
// one MetricsObserver must follow exactly one Controller.
type MetricsObserver struct {
	last float64
}

// NewMetricsObserver returns a MetricsObserver primed with the controller's
// initial state.
func NewMetricsObserver(initial State) *MetricsObserver {
	metrics.RecordScale(initial.ScaleFactor, initial.FiniteStreak)
	return &MetricsObserver{last: initial.ScaleFactor}
}

// ScaleUpdated implements Observer.
func (o *MetricsObserver) ScaleUpdated(s State) {
	switch {
	case s.ScaleFactor < o.last:
		metrics.ScaleBackoffs.Inc()
	case s.ScaleFactor > o.last:
		metrics.ScaleGrowths.Inc()
	}
	o.last = s.ScaleFactor
	metrics.RecordScale(s.ScaleFactor, s.FiniteStreak)
}

// NonFinite implements Observer.
func (o *MetricsObserver) NonFinite(kind Kind, _ int, nans, infs int) {
	metrics.RecordNonFinite(kind.String(), nans, infs)
}

// RetryExhausted implements Observer.
func (o *MetricsObserver) RetryExhausted(kind Kind, _ int) {
	metrics.RecordRetryExhausted(kind.String())
}

// Completed implements Observer.
func (o *MetricsObserver) Completed(_ Kind, attempts int) {
	metrics.RecordAttempts(attempts)
}
