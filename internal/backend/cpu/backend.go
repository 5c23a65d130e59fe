// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/born-ml/forcescale/internal/parallel"
	"github.com/born-ml/forcescale/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Every op allocates a fresh result; inputs are never modified, so tensors
// recorded on an autodiff tape stay valid for repeated backward passes.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend with default parallelism.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division.
// Division by zero follows IEEE 754 (±Inf or NaN), it does not panic.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float64) float64 { return x / y })
}

// binary applies f element-wise with single-element broadcasting.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	outShape, err := tensor.BroadcastScalar(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	dtype := a.DType()
	if a.Shape().IsScalar() && !b.Shape().IsScalar() {
		dtype = b.DType()
	}
	result := tensor.MustRaw(outShape, dtype)

	ad, bd, out := a.Data(), b.Data(), result.Data()
	aStep, bStep := 1, 1
	if len(ad) == 1 {
		aStep = 0
	}
	if len(bd) == 1 {
		bStep = 0
	}

	parallel.For(len(out), func(i int) {
		out[i] = dtype.Round(f(ad[i*aStep], bd[i*bStep]))
	}, cpu.par)

	return result
}

// unary applies f element-wise, keeping x's shape and precision.
func (cpu *CPUBackend) unary(x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), x.DType())
	src, dst := x.Data(), result.Data()
	dtype := x.DType()

	parallel.For(len(dst), func(i int) {
		dst[i] = dtype.Round(f(src[i]))
	}, cpu.par)

	return result
}
