package ops

import "github.com/born-ml/forcescale/internal/tensor"

// SqrtOp represents element-wise square root: output = sqrt(x).
//
// Backward pass:
//
//	grad_x = outputGrad / (2 * sqrt(x)) = outputGrad * 0.5 / output
//
// At x = 0 the gradient is +Inf, which is exactly the kind of non-finite
// result the force scaler is there to catch.
type SqrtOp struct {
	base
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward computes the input gradient for sqrt.
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	half := backend.MulScalar(outputGrad, 0.5)
	return []*tensor.RawTensor{backend.Div(half, op.output)}
}
