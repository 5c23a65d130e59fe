package scaler

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid scaler config")

// Config holds the controller's immutable settings.
type Config struct {
	InitScale      float64 // Starting scale factor (default: 256)
	GrowthFactor   float64 // Multiplier applied after GrowthInterval finite results (default: 2)
	BackoffFactor  float64 // Multiplier applied after a non-finite result (default: 0.5)
	GrowthInterval int     // Consecutive finite results needed to grow (default: 2000)
	MaxForceIters  int     // Attempts per call before giving up (default: 50)
	Enabled        bool    // When false, scaling and retries are bypassed
}

// DefaultConfig returns the standard settings: start at 2^8, double every
// 2000 finite results, halve on every overflow, give up after 50 attempts.
func DefaultConfig() Config {
	return Config{
		InitScale:      256.0,
		GrowthFactor:   2.0,
		BackoffFactor:  0.5,
		GrowthInterval: 2000,
		MaxForceIters:  50,
		Enabled:        true,
	}
}

// Validate checks the configuration. Values that would make growth or
// backoff fire always or never are rejected.
func (c Config) Validate() error {
	if !(c.InitScale > 0) || math.IsInf(c.InitScale, 0) {
		return fmt.Errorf("%w: init_scale %v (must be positive and finite)", ErrInvalidConfig, c.InitScale)
	}
	if !(c.GrowthFactor > 1) || math.IsInf(c.GrowthFactor, 0) {
		return fmt.Errorf("%w: growth_factor %v (must be > 1 and finite)", ErrInvalidConfig, c.GrowthFactor)
	}
	if !(c.BackoffFactor > 0 && c.BackoffFactor < 1) {
		return fmt.Errorf("%w: backoff_factor %v (must be in (0, 1))", ErrInvalidConfig, c.BackoffFactor)
	}
	if c.GrowthInterval < 1 {
		return fmt.Errorf("%w: growth_interval %d (must be >= 1)", ErrInvalidConfig, c.GrowthInterval)
	}
	if c.MaxForceIters < 1 {
		return fmt.Errorf("%w: max_force_iters %d (must be >= 1)", ErrInvalidConfig, c.MaxForceIters)
	}
	return nil
}
