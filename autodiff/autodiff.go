// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// It wraps any backend to record operations on a gradient tape. Grad then
// walks the tape backwards from a scalar output:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	energy, _ := model.Energy(backend, pos, nil)
//	grads, err := backend.Grad(energy, []*tensor.RawTensor{pos}, autodiff.GradOptions{})
package autodiff

import (
	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// GradOptions controls Grad.
type GradOptions = autodiff.GradOptions

// Errors returned by Grad.
var (
	ErrNilTensor   = autodiff.ErrNilTensor
	ErrNoGraph     = autodiff.ErrNoGraph
	ErrUnusedInput = autodiff.ErrUnusedInput
	ErrBackward    = autodiff.ErrBackward
)
