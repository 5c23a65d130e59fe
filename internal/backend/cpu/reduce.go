package cpu

import (
	"fmt"

	"github.com/born-ml/forcescale/internal/parallel"
	"github.com/born-ml/forcescale/internal/tensor"
)

// Sum reduces all elements to a scalar of shape ().
// Accumulation happens in float64, the result is rounded once.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	var acc float64
	for _, v := range x.Data() {
		acc += v
	}
	result := tensor.MustRaw(tensor.Shape{}, x.DType())
	result.Set(0, acc)
	return result
}

// SumLastDim reduces a 2D tensor (N, K) to (N).
func (cpu *CPUBackend) SumLastDim(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("sumlastdim: expected 2D tensor, got shape %v", shape))
	}
	n, k := shape[0], shape[1]

	result := tensor.MustRaw(tensor.Shape{n}, x.DType())
	src, dst := x.Data(), result.Data()
	dtype := x.DType()

	parallel.For(n, func(i int) {
		var acc float64
		for j := 0; j < k; j++ {
			acc += src[i*k+j]
		}
		dst[i] = dtype.Round(acc)
	}, cpu.par)

	return result
}

// BroadcastTo expands a single-element tensor to shape.
func (cpu *CPUBackend) BroadcastTo(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if !x.Shape().IsScalar() {
		if x.Shape().Equal(shape) {
			return x.Clone()
		}
		panic(fmt.Sprintf("broadcastto: cannot broadcast %v to %v", x.Shape(), shape))
	}
	result, err := tensor.Full(shape, x.Item(), x.DType())
	if err != nil {
		panic(fmt.Sprintf("broadcastto: %v", err))
	}
	return result
}

// RepeatLastDim expands (N) to (N, K) by repeating each element K times.
func (cpu *CPUBackend) RepeatLastDim(x *tensor.RawTensor, k int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 1 {
		panic(fmt.Sprintf("repeatlastdim: expected 1D tensor, got shape %v", shape))
	}
	n := shape[0]

	result := tensor.MustRaw(tensor.Shape{n, k}, x.DType())
	src, dst := x.Data(), result.Data()
	parallel.ForRows(n, k, func(i, j int) {
		dst[i*k+j] = src[i]
	}, cpu.par)

	return result
}
