package cpu

import (
	"fmt"

	"github.com/born-ml/forcescale/internal/tensor"
)

// IndexRows gathers rows of a 2D tensor: out[i] = x[idx[i]].
func (cpu *CPUBackend) IndexRows(x *tensor.RawTensor, idx []int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("indexrows: expected 2D tensor, got shape %v", shape))
	}
	if len(idx) == 0 {
		panic("indexrows: empty index")
	}
	n, k := shape[0], shape[1]

	result := tensor.MustRaw(tensor.Shape{len(idx), k}, x.DType())
	src, dst := x.Data(), result.Data()
	for i, row := range idx {
		if row < 0 || row >= n {
			panic(fmt.Sprintf("indexrows: index %d out of range [0, %d)", row, n))
		}
		copy(dst[i*k:(i+1)*k], src[row*k:(row+1)*k])
	}
	return result
}

// ScatterAddRows is the adjoint of IndexRows: out[idx[i]] += src[i].
// Sequential because several i may target the same row.
func (cpu *CPUBackend) ScatterAddRows(src *tensor.RawTensor, idx []int, n int) *tensor.RawTensor {
	shape := src.Shape()
	if len(shape) != 2 || shape[0] != len(idx) {
		panic(fmt.Sprintf("scatteraddrows: source shape %v does not match %d indices", shape, len(idx)))
	}
	k := shape[1]

	result := tensor.MustRaw(tensor.Shape{n, k}, src.DType())
	s, dst := src.Data(), result.Data()
	for i, row := range idx {
		if row < 0 || row >= n {
			panic(fmt.Sprintf("scatteraddrows: index %d out of range [0, %d)", row, n))
		}
		for j := 0; j < k; j++ {
			dst[row*k+j] += s[i*k+j]
		}
	}
	dtype := src.DType()
	for i, v := range dst {
		dst[i] = dtype.Round(v)
	}
	return result
}
