// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package scaler provides the adaptive force/stress scale controller.
//
// The controller multiplies a scalar energy by a scale factor before
// differentiating it and divides the factor back out of the gradients, so
// that forces and virials computed in half precision neither overflow nor
// flush to zero. Non-finite results shrink the factor and are recomputed;
// long finite streaks grow it again.
//
//	backend := autodiff.New(cpu.New())
//	ctrl, err := scaler.New(scaler.DefaultConfig(), backend)
//
//	backend.Tape().StartRecording()
//	energy, _ := potential.DefaultLennardJones().Energy(backend, pos, disp)
//	forces, virials, err := ctrl.ComputeForcesAndStressesWithUpdate(energy, pos, disp)
package scaler

import "github.com/born-ml/forcescale/internal/scaler"

// Controller owns the scale factor and the consecutive-finite counter.
type Controller = scaler.Controller

// Config holds the controller hyperparameters.
type Config = scaler.Config

// State is a snapshot of the controller's mutable state.
type State = scaler.State

// Differentiator is the gradient primitive the controller drives.
type Differentiator = scaler.Differentiator

// GraphRewinder is implemented by Differentiators that can drop a failed
// attempt's recorded graph.
type GraphRewinder = scaler.GraphRewinder

// Observer receives update and warning signals.
type Observer = scaler.Observer

// NopObserver ignores every signal.
type NopObserver = scaler.NopObserver

// MultiObserver fans signals out to several observers.
type MultiObserver = scaler.MultiObserver

// LogObserver logs signals through the global zerolog logger.
type LogObserver = scaler.LogObserver

// MetricsObserver records signals as Prometheus metrics.
type MetricsObserver = scaler.MetricsObserver

// NewMetricsObserver returns a MetricsObserver primed with the initial state.
func NewMetricsObserver(initial State) *MetricsObserver {
	return scaler.NewMetricsObserver(initial)
}

// Option configures a Controller.
type Option = scaler.Option

// Kind names the entry point that produced an observer event.
type Kind = scaler.Kind

// Entry point kinds.
const (
	Forces            = scaler.Forces
	ForcesAndStresses = scaler.ForcesAndStresses
)

// Errors.
var (
	ErrInvalidConfig = scaler.ErrInvalidConfig
	ErrNilTensor     = scaler.ErrNilTensor
)

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return scaler.DefaultConfig()
}

// New creates a controller; cfg is validated even when disabled.
func New(cfg Config, diff Differentiator, opts ...Option) (*Controller, error) {
	return scaler.New(cfg, diff, opts...)
}

// WithObserver sets the observer receiving update and warning signals.
func WithObserver(o Observer) Option {
	return scaler.WithObserver(o)
}
