package optim

import (
	"math"

	"github.com/born-ml/forcescale/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer on the
// energy gradient g = -F.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * g
//	v_t = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	x = x - lr * m_hat / (sqrt(v_hat) + eps)
//
// Moments are kept in float64 regardless of the positions' precision.
type Adam struct {
	lr      float64
	maxStep float64
	beta1   float64
	beta2   float64
	eps     float64
	t       int
	m       []float64
	v       []float64
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	Config
	Betas [2]float64 // Coefficients for the running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		lr:      config.LR,
		maxStep: config.MaxStep,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
	}
}

// Step implements Optimizer.
func (a *Adam) Step(pos, forces *tensor.RawTensor) error {
	if err := checkStep(pos, forces); err != nil {
		return err
	}

	f := forces.Data()
	if len(a.m) != len(f) {
		a.m = make([]float64, len(f))
		a.v = make([]float64, len(f))
		a.t = 0
	}

	a.t++
	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	delta := make([]float64, len(f))
	for i, fi := range f {
		g := -fi
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / biasCorrection1
		vHat := a.v[i] / biasCorrection2
		delta[i] = -a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
	apply(pos, delta, a.maxStep)
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// Reset clears the moment estimates and timestep.
func (a *Adam) Reset() {
	a.m, a.v, a.t = nil, nil, 0
}
