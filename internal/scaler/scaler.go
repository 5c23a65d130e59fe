// Package scaler implements the adaptive force/stress scale controller for
// mixed-precision force fields.
//
// Forces are the negative gradient of a scalar energy with respect to atomic
// positions. In reduced precision that gradient can overflow, so the
// controller multiplies the energy by a scale factor before differentiating
// and divides it back out of the gradients afterwards. The scale factor
// behaves like a dynamic loss scale:
//   - every non-finite result halves it (BackoffFactor) and the gradient is
//     recomputed, at most MaxForceIters times per call
//   - GrowthInterval consecutive finite results double it (GrowthFactor)
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	ctrl, err := scaler.New(scaler.DefaultConfig(), backend)
//
//	backend.Tape().StartRecording()
//	energy, _ := model.Energy(backend, pos, nil)
//	forces, err := ctrl.ComputeForcesWithUpdate(energy, pos)
//
// A Controller is not safe for concurrent use; callers sharing one across
// goroutines must serialize every call.
package scaler

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/internal/tensor"
)

// ErrNilTensor is returned when energy, positions or displacement is nil.
var ErrNilTensor = errors.New("scaler: nil tensor")

// Differentiator is the gradient primitive the controller drives.
// *autodiff.AutodiffBackend satisfies it.
type Differentiator interface {
	// MulScalar returns x*s, recorded so that gradients flow through it.
	MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor

	// Grad returns d(output)/d(input) for each input.
	Grad(output *tensor.RawTensor, inputs []*tensor.RawTensor, opts autodiff.GradOptions) ([]*tensor.RawTensor, error)
}

// GraphRewinder is implemented by Differentiators that can drop the graph
// recorded after a mark. The controller uses it to discard the scaling op of
// a failed attempt before retrying.
type GraphRewinder interface {
	Mark() int
	Rewind(mark int)
}

// Controller owns the scale factor and the consecutive-finite counter.
type Controller struct {
	cfg      Config
	diff     Differentiator
	observer Observer
	state    State
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver sets the observer receiving update and warning signals.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates a controller. It fails with ErrInvalidConfig on bad settings.
func New(cfg Config, diff Differentiator, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if diff == nil {
		return nil, errors.New("scaler: nil differentiator")
	}

	c := &Controller{
		cfg:      cfg,
		diff:     diff,
		observer: NopObserver{},
		state:    State{ScaleFactor: cfg.InitScale},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns a snapshot of the scale factor and finite streak.
func (c *Controller) State() State {
	return c.state
}

// Scale returns energy * scale factor, recorded on the graph.
// Identity when disabled.
func (c *Controller) Scale(energy *tensor.RawTensor) *tensor.RawTensor {
	if !c.cfg.Enabled {
		return energy
	}
	return c.diff.MulScalar(energy, c.state.ScaleFactor)
}

// Unscale divides each gradient by the scale factor, in the gradient's own
// precision. nil entries pass through. Identity when disabled.
func (c *Controller) Unscale(grads ...*tensor.RawTensor) []*tensor.RawTensor {
	out := make([]*tensor.RawTensor, len(grads))
	if !c.cfg.Enabled {
		copy(out, grads)
		return out
	}
	s := c.state.ScaleFactor
	for i, g := range grads {
		if g == nil {
			continue
		}
		out[i] = g.Map(func(v float64) float64 { return v / s })
	}
	return out
}

// The scale factor stays positive and finite however long a run of
// non-finite (or finite) results lasts.
const (
	minScale = math.SmallestNonzeroFloat64
	maxScale = math.MaxFloat64
)

// Update applies the scale schedule once:
//   - streak == 0: shrink by BackoffFactor
//   - streak == GrowthInterval: grow by GrowthFactor and reset the streak
//   - otherwise: unchanged
//
// The observer is notified in every case.
func (c *Controller) Update() {
	switch c.state.FiniteStreak {
	case 0:
		c.state.ScaleFactor = max(c.state.ScaleFactor*c.cfg.BackoffFactor, minScale)
	case c.cfg.GrowthInterval:
		c.state.ScaleFactor = min(c.state.ScaleFactor*c.cfg.GrowthFactor, maxScale)
		c.state.FiniteStreak = 0
	}
	c.observer.ScaleUpdated(c.state)
}

// RecordFinite counts a finite result and runs Update. It is the
// bookkeeping half of the retry loop for callers driving their own loop.
func (c *Controller) RecordFinite() {
	c.state.FiniteStreak++
	c.Update()
}

// RecordNonFinite resets the streak and runs Update, shrinking the scale.
func (c *Controller) RecordNonFinite() {
	c.state.FiniteStreak = 0
	c.Update()
}

func (c *Controller) String() string {
	return fmt.Sprintf("scaler.Controller(scale=%g, streak=%d/%d, enabled=%t)",
		c.state.ScaleFactor, c.state.FiniteStreak, c.cfg.GrowthInterval, c.cfg.Enabled)
}
