package ops

import "github.com/born-ml/forcescale/internal/tensor"

// SumOp reduces all elements: output = Σ x.
// The gradient broadcasts back to x's shape.
type SumOp struct {
	base
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward computes grad_x[i] = outputGrad for every i.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.BroadcastTo(outputGrad, op.inputs[0].Shape())}
}

// SumLastDimOp reduces the last axis of a 2D tensor: (N, K) → (N).
type SumLastDimOp struct {
	base
}

// NewSumLastDimOp creates a new SumLastDimOp.
func NewSumLastDimOp(x, output *tensor.RawTensor) *SumLastDimOp {
	return &SumLastDimOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward repeats each row gradient across the reduced axis.
func (op *SumLastDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	k := op.inputs[0].Shape()[1]
	return []*tensor.RawTensor{backend.RepeatLastDim(outputGrad, k)}
}
