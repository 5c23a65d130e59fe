package cpu

import (
	"fmt"

	"github.com/born-ml/forcescale/internal/parallel"
	"github.com/born-ml/forcescale/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (N, K) @ (K, M) → (N, M).
// Dot products accumulate in float64 and round once per output element.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", as, bs))
	}
	n, k, m := as[0], as[1], bs[1]

	dtype := a.DType()
	result := tensor.MustRaw(tensor.Shape{n, m}, dtype)
	ad, bd, out := a.Data(), b.Data(), result.Data()

	parallel.ForRows(n, m, func(i, j int) {
		var acc float64
		for p := 0; p < k; p++ {
			acc += ad[i*k+p] * bd[p*m+j]
		}
		out[i*m+j] = dtype.Round(acc)
	}, cpu.par)

	return result
}

// Transpose swaps the two axes of a 2D tensor.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got shape %v", shape))
	}
	n, m := shape[0], shape[1]

	result := tensor.MustRaw(tensor.Shape{m, n}, x.DType())
	src, dst := x.Data(), result.Data()
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			dst[j*n+i] = src[i*m+j]
		}
	}
	return result
}
