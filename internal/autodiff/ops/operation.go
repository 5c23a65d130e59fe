// Package ops defines the differentiable operations recorded on the tape.
//
// Each operation records its inputs and output during the forward pass and
// computes input gradients during the backward pass:
//   - AddOp, SubOp, MulOp, DivOp: element-wise binary arithmetic
//   - NegOp, MulScalarOp, AddScalarOp, PowOp, SqrtOp, ExpOp: element-wise unary math
//   - SumOp, SumLastDimOp: reductions
//   - IndexRowsOp: row gather (d/dx is a scatter-add)
//   - MatMulOp: 2D matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
package ops

import "github.com/born-ml/forcescale/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// base holds the bookkeeping shared by every op.
type base struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors.
func (b *base) Inputs() []*tensor.RawTensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *base) Output() *tensor.RawTensor {
	return b.output
}
