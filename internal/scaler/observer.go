package scaler

// Kind names the entry point that produced an event.
type Kind int

// Entry point kinds.
const (
	Forces Kind = iota
	ForcesAndStresses
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case Forces:
		return "forces"
	case ForcesAndStresses:
		return "forces_stresses"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller's mutable state.
type State struct {
	ScaleFactor  float64
	FiniteStreak int
}

// Observer receives the controller's informational and warning signals.
// Calls happen synchronously on the caller's goroutine and have no effect
// on control flow.
type Observer interface {
	// ScaleUpdated is called after every Update.
	ScaleUpdated(s State)

	// NonFinite is called for each attempt whose result held NaN or ±Inf.
	// attempt counts failed attempts within the current call, from 1.
	NonFinite(kind Kind, attempt, nans, infs int)

	// RetryExhausted is called when a call gives up after MaxForceIters
	// failed attempts and returns a non-finite result.
	RetryExhausted(kind Kind, attempts int)

	// Completed is called once per retrying call with the total number of
	// attempts it made.
	Completed(kind Kind, attempts int)
}

// NopObserver ignores every signal.
type NopObserver struct{}

// ScaleUpdated implements Observer.
func (NopObserver) ScaleUpdated(State) {}

// NonFinite implements Observer.
func (NopObserver) NonFinite(Kind, int, int, int) {}

// RetryExhausted implements Observer.
func (NopObserver) RetryExhausted(Kind, int) {}

// Completed implements Observer.
func (NopObserver) Completed(Kind, int) {}

// MultiObserver fans every signal out to each observer in order.
type MultiObserver []Observer

// ScaleUpdated implements Observer.
func (m MultiObserver) ScaleUpdated(s State) {
	for _, o := range m {
		o.ScaleUpdated(s)
	}
}

// NonFinite implements Observer.
func (m MultiObserver) NonFinite(kind Kind, attempt, nans, infs int) {
	for _, o := range m {
		o.NonFinite(kind, attempt, nans, infs)
	}
}

// RetryExhausted implements Observer.
func (m MultiObserver) RetryExhausted(kind Kind, attempts int) {
	for _, o := range m {
		o.RetryExhausted(kind, attempts)
	}
}

// Completed implements Observer.
func (m MultiObserver) Completed(kind Kind, attempts int) {
	for _, o := range m {
		o.Completed(kind, attempts)
	}
}
