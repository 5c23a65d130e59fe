package ops

import "github.com/born-ml/forcescale/internal/tensor"

// ExpOp represents element-wise exponential: output = exp(x).
//
// Backward pass:
//
//	grad_x = outputGrad * exp(x) = outputGrad * output
type ExpOp struct {
	base
}

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward computes the input gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}
