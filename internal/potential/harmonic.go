package potential

import (
	"fmt"

	"github.com/born-ml/forcescale/internal/tensor"
)

// Harmonic ties every atom to Center with a spring:
//
//	E = ½ k Σ_i |x_i − c|²
//
// Forces are −k(x − c), which makes it the reference model in tests.
type Harmonic struct {
	K      float64
	Center [3]float64
}

// Name implements Model.
func (h Harmonic) Name() string {
	return "harmonic"
}

// Energy implements Model.
func (h Harmonic) Energy(b tensor.Backend, pos, displacement *tensor.RawTensor) (*tensor.RawTensor, error) {
	p, err := strain(b, pos, displacement)
	if err != nil {
		return nil, err
	}

	n := p.Shape()[0]
	center := make([]float64, 0, n*3)
	for range n {
		center = append(center, h.Center[:]...)
	}
	c, err := tensor.FromSlice(center, tensor.Shape{n, 3}, p.DType())
	if err != nil {
		return nil, fmt.Errorf("harmonic: %w", err)
	}

	d := b.Sub(p, c)
	return b.MulScalar(b.Sum(b.Mul(d, d)), 0.5*h.K), nil
}
