package cpu

import (
	"math"

	"github.com/born-ml/forcescale/internal/tensor"
)

// Neg computes element-wise negation: -x.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 { return -v })
}

// MulScalar multiplies every element by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 { return v * s })
}

// AddScalar adds s to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 { return v + s })
}

// Pow raises every element to the power p.
func (cpu *CPUBackend) Pow(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	switch p {
	case 2:
		return cpu.unary(x, func(v float64) float64 { return v * v })
	case -1:
		return cpu.unary(x, func(v float64) float64 { return 1 / v })
	default:
		return cpu.unary(x, func(v float64) float64 { return math.Pow(v, p) })
	}
}

// Sqrt computes element-wise square root.
// Negative inputs produce NaN rather than a panic.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Sqrt)
}

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Exp)
}
