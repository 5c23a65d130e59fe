// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package potential provides differentiable energy models.
package potential

import (
	"math/rand/v2"

	"github.com/born-ml/forcescale/internal/potential"
	"github.com/born-ml/forcescale/tensor"
)

// Model computes a scalar energy from atomic positions and an optional
// (3, 3) displacement.
type Model = potential.Model

// LennardJones is the 12-6 pair potential.
type LennardJones = potential.LennardJones

// Harmonic ties every atom to a center with a spring.
type Harmonic = potential.Harmonic

// System holds the positions and displacement leaf tensors of a structure.
type System = potential.System

// ErrShape is returned for positions or displacement of the wrong shape.
var ErrShape = potential.ErrShape

// DefaultLennardJones returns reduced units with a 2.5σ cutoff.
func DefaultLennardJones() LennardJones {
	return potential.DefaultLennardJones()
}

// NewSystem builds leaf tensors for coords in the given precision.
func NewSystem(coords [][3]float64, dtype tensor.DataType) (*System, error) {
	return potential.NewSystem(coords, dtype)
}

// CubicLattice returns n×n×n points spaced a apart.
func CubicLattice(n int, a float64) [][3]float64 {
	return potential.CubicLattice(n, a)
}

// Jitter displaces every coordinate uniformly in [-amp, amp].
func Jitter(coords [][3]float64, amp float64, rng *rand.Rand) [][3]float64 {
	return potential.Jitter(coords, amp, rng)
}
