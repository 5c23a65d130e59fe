package scaler

import "github.com/born-ml/forcescale/internal/logger"

// LogObserver reports controller signals through a logger.Logger.
// A nil Logger uses logger.Log at call time, so logger.Setup may run after
// the observer is built.
type LogObserver struct {
	Logger *logger.Logger
}

func (o LogObserver) log() *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Log
}

// ScaleUpdated implements Observer.
func (o LogObserver) ScaleUpdated(s State) {
	o.log().Info("finite force step count", "streak", s.FiniteStreak)
	o.log().Info("scaling factor", "scale", s.ScaleFactor)
}

// NonFinite implements Observer.
func (o LogObserver) NonFinite(kind Kind, attempt, nans, infs int) {
	o.log().Debug("non-finite gradient, backing off",
		"kind", kind.String(), "attempt", attempt, "nan", nans, "inf", infs)
}

// RetryExhausted implements Observer.
func (o LogObserver) RetryExhausted(kind Kind, attempts int) {
	o.log().Warn("too many non-finite results in a batch, breaking scaling loop",
		"kind", kind.String(), "attempts", attempts)
}

// Completed implements Observer.
func (o LogObserver) Completed(kind Kind, attempts int) {
	if attempts > 1 {
		o.log().Info("gradient recovered after retries", "kind", kind.String(), "attempts", attempts)
	}
}
