// Package optim implements geometry relaxation optimizers.
//
// Forces are the negative energy gradient, so every optimizer here moves
// positions along the forces:
//
//	for step := range maxSteps {
//	    forces, _ := ctrl.ComputeForcesWithUpdate(energy, pos)
//	    if optim.MaxForce(forces) < fmax {
//	        break
//	    }
//	    if err := optimizer.Step(pos, forces); err != nil { ... }
//	}
package optim

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/forcescale/internal/tensor"
)

// Errors returned by Step.
var (
	ErrNonFinite     = errors.New("optim: non-finite forces")
	ErrShapeMismatch = errors.New("optim: positions and forces differ in shape")
)

// Optimizer is the base interface for all relaxation algorithms.
type Optimizer interface {
	// Step moves pos in place along forces. Positions are rounded to their
	// own precision. Non-finite forces leave pos untouched and return
	// ErrNonFinite.
	Step(pos, forces *tensor.RawTensor) error

	// GetLR returns the current learning rate.
	GetLR() float64

	// Reset drops accumulated optimizer state.
	Reset()
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR      float64 // Learning rate
	MaxStep float64 // Largest per-atom displacement per step, 0 for no limit
}

// MaxForce returns the largest per-atom force norm of a (N, 3) tensor,
// or +Inf when any component is non-finite.
func MaxForce(forces *tensor.RawTensor) float64 {
	data := forces.Data()
	var fmax float64
	for i := 0; i+3 <= len(data); i += 3 {
		n := math.Sqrt(data[i]*data[i] + data[i+1]*data[i+1] + data[i+2]*data[i+2])
		if math.IsNaN(n) {
			return math.Inf(1)
		}
		fmax = math.Max(fmax, n)
	}
	return fmax
}

// checkStep validates Step arguments.
func checkStep(pos, forces *tensor.RawTensor) error {
	if !pos.Shape().Equal(forces.Shape()) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, pos.Shape(), forces.Shape())
	}
	if !forces.AllFinite() {
		return ErrNonFinite
	}
	return nil
}

// apply adds delta to pos, scaling each atom's displacement down to
// maxStep when it is longer.
func apply(pos *tensor.RawTensor, delta []float64, maxStep float64) {
	if maxStep > 0 {
		for i := 0; i+3 <= len(delta); i += 3 {
			n := math.Sqrt(delta[i]*delta[i] + delta[i+1]*delta[i+1] + delta[i+2]*delta[i+2])
			if n > maxStep {
				s := maxStep / n
				delta[i] *= s
				delta[i+1] *= s
				delta[i+2] *= s
			}
		}
	}
	for i, d := range delta {
		pos.Set(i, pos.At(i)+d)
	}
}
