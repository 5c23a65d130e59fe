package ops

import "github.com/born-ml/forcescale/internal/tensor"

// NegOp represents element-wise negation: output = -x.
type NegOp struct {
	base
}

// NewNegOp creates a new NegOp.
func NewNegOp(x, output *tensor.RawTensor) *NegOp {
	return &NegOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward computes grad_x = -outputGrad.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(outputGrad)}
}
