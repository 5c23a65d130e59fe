// Package potential provides differentiable energy models built on the
// tensor.Backend interface. Recording the forward pass on an autodiff
// backend lets the force scaler take forces and virials as gradients.
package potential

import (
	"errors"
	"fmt"

	"github.com/born-ml/forcescale/internal/tensor"
)

// ErrShape is returned for positions or displacement of the wrong shape.
var ErrShape = errors.New("potential: invalid shape")

// Model computes a scalar energy from atomic positions.
type Model interface {
	// Name identifies the model in logs.
	Name() string

	// Energy returns the total energy as a shape () tensor.
	//
	// pos has shape (N, 3). displacement is nil or (3, 3); when given, the
	// positions are strained as pos + pos @ displacement before the energy
	// is evaluated, so d(energy)/d(displacement) is the virial.
	Energy(b tensor.Backend, pos, displacement *tensor.RawTensor) (*tensor.RawTensor, error)
}

// strain validates shapes and applies the displacement, if any.
func strain(b tensor.Backend, pos, displacement *tensor.RawTensor) (*tensor.RawTensor, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil positions", ErrShape)
	}
	ps := pos.Shape()
	if len(ps) != 2 || ps[1] != 3 {
		return nil, fmt.Errorf("%w: positions %v (want (N, 3))", ErrShape, ps)
	}
	if displacement == nil {
		return pos, nil
	}
	if !displacement.Shape().Equal(tensor.Shape{3, 3}) {
		return nil, fmt.Errorf("%w: displacement %v (want (3, 3))", ErrShape, displacement.Shape())
	}
	return b.Add(pos, b.MatMul(pos, displacement)), nil
}
