package optim

import "github.com/born-ml/forcescale/internal/tensor"

// SGD implements steepest descent with optional momentum.
//
// Update rule with momentum:
//
//	v = momentum * v + F
//	x = x + lr * v
//
// Without momentum (momentum = 0):
//
//	x = x + lr * F
type SGD struct {
	lr       float64
	maxStep  float64
	momentum float64
	velocity []float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	Config
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer. LR defaults to 0.01.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{lr: config.LR, maxStep: config.MaxStep, momentum: config.Momentum}
}

// Step implements Optimizer.
func (s *SGD) Step(pos, forces *tensor.RawTensor) error {
	if err := checkStep(pos, forces); err != nil {
		return err
	}

	f := forces.Data()
	if s.velocity == nil || len(s.velocity) != len(f) {
		s.velocity = make([]float64, len(f))
	}

	delta := make([]float64, len(f))
	for i, fi := range f {
		s.velocity[i] = s.momentum*s.velocity[i] + fi
		delta[i] = s.lr * s.velocity[i]
	}
	apply(pos, delta, s.maxStep)
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Reset clears the velocity.
func (s *SGD) Reset() {
	s.velocity = nil
}
