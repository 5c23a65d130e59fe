package ops

import "github.com/born-ml/forcescale/internal/tensor"

// PowOp represents raising to a constant power: output = x^p.
//
// Backward pass:
//
//	grad_x = outputGrad * p * x^(p-1)
type PowOp struct {
	base
	power float64
}

// NewPowOp creates a new PowOp.
func NewPowOp(x, output *tensor.RawTensor, p float64) *PowOp {
	return &PowOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, power: p}
}

// Backward computes the input gradient for the power op.
func (op *PowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	local := backend.MulScalar(backend.Pow(x, op.power-1), op.power)
	return []*tensor.RawTensor{backend.Mul(outputGrad, local)}
}
