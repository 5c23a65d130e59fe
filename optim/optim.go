// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides geometry relaxation optimizers driven by forces.
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    Config:   optim.Config{LR: 0.01, MaxStep: 0.05},
//	    Momentum: 0.5,
//	})
//	res, err := optim.Relax(ctx, pos, forcesAt, optimizer, 0.01, 500)
package optim

import (
	"context"

	"github.com/born-ml/forcescale/internal/optim"
	"github.com/born-ml/forcescale/tensor"
)

// Optimizer is the base interface for all relaxation algorithms.
type Optimizer = optim.Optimizer

// Config is the base configuration for all optimizers.
type Config = optim.Config

// SGD implements steepest descent with optional momentum.
type SGD = optim.SGD

// SGDConfig holds configuration for SGD.
type SGDConfig = optim.SGDConfig

// Adam implements the Adam optimizer.
type Adam = optim.Adam

// AdamConfig holds configuration for Adam.
type AdamConfig = optim.AdamConfig

// ForceFunc returns the forces at the current positions.
type ForceFunc = optim.ForceFunc

// Result summarizes a relaxation.
type Result = optim.Result

// Errors returned by Step.
var (
	ErrNonFinite     = optim.ErrNonFinite
	ErrShapeMismatch = optim.ErrShapeMismatch
)

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// NewAdam creates a new Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// MaxForce returns the largest per-atom force norm.
func MaxForce(forces *tensor.RawTensor) float64 {
	return optim.MaxForce(forces)
}

// Relax moves pos in place until the largest per-atom force is at most fmax.
func Relax(ctx context.Context, pos *tensor.RawTensor, forces ForceFunc, opt Optimizer, fmax float64, maxSteps int) (Result, error) {
	return optim.Relax(ctx, pos, forces, opt, fmax, maxSteps)
}
