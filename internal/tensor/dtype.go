// Package tensor provides the dense tensor type used by the force scaler,
// the CPU backend and the autodiff tape.
package tensor

import (
	"math"
	"strings"
)

// DataType represents runtime precision information for tensors.
//
// Storage is always float64, but every value written into a tensor is
// rounded to the precision of its DataType. A Float16 tensor therefore
// overflows to ±Inf above 65504 exactly like half-precision hardware.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseDataType maps a case-insensitive name ("float16", "fp16", "float32",
// ...) to a DataType.
func ParseDataType(name string) (DataType, bool) {
	switch strings.ToLower(name) {
	case "float16", "fp16", "half":
		return Float16, true
	case "float32", "fp32":
		return Float32, true
	case "float64", "fp64":
		return Float64, true
	default:
		return 0, false
	}
}

// MaxFinite returns the largest finite value representable in the data type.
func (dt DataType) MaxFinite() float64 {
	switch dt {
	case Float16:
		return MaxFloat16
	case Float32:
		return math.MaxFloat32
	default:
		return math.MaxFloat64
	}
}

// Round rounds v to the precision of the data type.
func (dt DataType) Round(v float64) float64 {
	switch dt {
	case Float16:
		return float64(FP16ToFloat32(Float32ToFP16(float32(v))))
	case Float32:
		return float64(float32(v))
	default:
		return v
	}
}
