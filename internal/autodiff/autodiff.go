// Package autodiff implements reverse-mode automatic differentiation using
// the decorator pattern.
//
// AutodiffBackend wraps any tensor.Backend and records differentiable
// operations on a GradientTape. Grad walks the tape backwards from a scalar
// output and returns gradients for the requested inputs, which is the
// differentiation primitive the force scaler drives.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, tensor.Float32)
//	y := backend.Sum(backend.Mul(x, x)) // y = x²
//
//	grads, _ := backend.Grad(y, []*tensor.RawTensor{x}, autodiff.GradOptions{})
//	fmt.Println(grads[0]) // dy/dx = 2x = 4
package autodiff

import (
	"github.com/born-ml/forcescale/internal/autodiff/ops"
	"github.com/born-ml/forcescale/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements tensor.Backend and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
// The tape starts out not recording.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, result))
	return result
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, result))
	return result
}

// Neg negates every element and records the operation.
func (b *AutodiffBackend[B]) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Neg(x)
	b.tape.Record(ops.NewNegOp(x, result))
	return result
}

// MulScalar multiplies by a constant and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, s)
	b.tape.Record(ops.NewMulScalarOp(x, result, s))
	return result
}

// AddScalar adds a constant and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, s)
	b.tape.Record(ops.NewAddScalarOp(x, result))
	return result
}

// Pow raises to a constant power and records the operation.
func (b *AutodiffBackend[B]) Pow(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	result := b.inner.Pow(x, p)
	b.tape.Record(ops.NewPowOp(x, result, p))
	return result
}

// Sqrt computes the square root and records the operation.
func (b *AutodiffBackend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sqrt(x)
	b.tape.Record(ops.NewSqrtOp(x, result))
	return result
}

// Exp computes the exponential and records the operation.
func (b *AutodiffBackend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, result))
	return result
}

// Sum reduces all elements and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, result))
	return result
}

// SumLastDim reduces the last axis and records the operation.
func (b *AutodiffBackend[B]) SumLastDim(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.SumLastDim(x)
	b.tape.Record(ops.NewSumLastDimOp(x, result))
	return result
}

// BroadcastTo is not differentiable; it is only used inside backward passes.
func (b *AutodiffBackend[B]) BroadcastTo(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.inner.BroadcastTo(x, shape)
}

// RepeatLastDim is not differentiable; it is only used inside backward passes.
func (b *AutodiffBackend[B]) RepeatLastDim(x *tensor.RawTensor, k int) *tensor.RawTensor {
	return b.inner.RepeatLastDim(x, k)
}

// IndexRows gathers rows and records the operation.
func (b *AutodiffBackend[B]) IndexRows(x *tensor.RawTensor, idx []int) *tensor.RawTensor {
	result := b.inner.IndexRows(x, idx)
	b.tape.Record(ops.NewIndexRowsOp(x, result, idx))
	return result
}

// ScatterAddRows is not differentiable; it is only used inside backward passes.
func (b *AutodiffBackend[B]) ScatterAddRows(src *tensor.RawTensor, idx []int, n int) *tensor.RawTensor {
	return b.inner.ScatterAddRows(src, idx, n)
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, result))
	return result
}

// Transpose is not differentiable; it is only used inside backward passes.
func (b *AutodiffBackend[B]) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Transpose(x)
}
