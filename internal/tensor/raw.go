package tensor

import (
	"errors"
	"fmt"
	"math"
)

// ErrReleased is returned (or panicked with) when a released tensor is used.
var ErrReleased = errors.New("tensor: use of released tensor")

// RawTensor is a dense row-major tensor with runtime precision.
//
// Values are held as float64 but always rounded to the tensor's DataType
// on write, see DataType.Round.
type RawTensor struct {
	data  []float64
	shape Shape
	dtype DataType
}

// NewRaw creates a zero-filled tensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:  make([]float64, shape.NumElements()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// MustRaw is NewRaw that panics on an invalid shape.
// Intended for backends where the shape was already validated.
func MustRaw(shape Shape, dtype DataType) *RawTensor {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err)
	}
	return r
}

// FromSlice creates a tensor from values, rounding each to dtype.
func FromSlice(values []float64, shape Shape, dtype DataType) (*RawTensor, error) {
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(values), shape, shape.NumElements())
	}
	r, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		r.data[i] = dtype.Round(v)
	}
	return r, nil
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64, dtype DataType) (*RawTensor, error) {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	v := dtype.Round(value)
	for i := range r.data {
		r.data[i] = v
	}
	return r, nil
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return NewRaw(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*RawTensor, error) {
	return Full(shape, 1, dtype)
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the underlying values.
// Writers must round through DType().Round or use Set.
func (r *RawTensor) Data() []float64 {
	r.mustLive()
	return r.data
}

// At returns the element at flat index i.
func (r *RawTensor) At(i int) float64 {
	r.mustLive()
	return r.data[i]
}

// Set writes v, rounded to the tensor's precision, at flat index i.
func (r *RawTensor) Set(i int, v float64) {
	r.mustLive()
	r.data[i] = r.dtype.Round(v)
}

// Item returns the single value of a one-element tensor.
func (r *RawTensor) Item() float64 {
	r.mustLive()
	if len(r.data) != 1 {
		panic(fmt.Sprintf("tensor: Item on tensor with %d elements", len(r.data)))
	}
	return r.data[0]
}

// Clone returns a deep copy.
func (r *RawTensor) Clone() *RawTensor {
	r.mustLive()
	data := make([]float64, len(r.data))
	copy(data, r.data)
	return &RawTensor{data: data, shape: r.shape.Clone(), dtype: r.dtype}
}

// Release drops the tensor's storage. Further reads panic with ErrReleased.
// Releasing twice or releasing nil is a no-op.
func (r *RawTensor) Release() {
	if r == nil {
		return
	}
	r.data = nil
}

// IsReleased reports whether Release has been called.
func (r *RawTensor) IsReleased() bool {
	return r.data == nil
}

// AllFinite reports whether every element is neither NaN nor ±Inf.
func (r *RawTensor) AllFinite() bool {
	r.mustLive()
	for _, v := range r.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CountNonFinite returns the number of NaN and ±Inf elements.
func (r *RawTensor) CountNonFinite() (nans, infs int) {
	r.mustLive()
	for _, v := range r.data {
		switch {
		case math.IsNaN(v):
			nans++
		case math.IsInf(v, 0):
			infs++
		}
	}
	return nans, infs
}

// String implements fmt.Stringer.
func (r *RawTensor) String() string {
	if r.IsReleased() {
		return fmt.Sprintf("RawTensor(%v, %s, released)", r.shape, r.dtype)
	}
	return fmt.Sprintf("RawTensor(%v, %s, %v)", r.shape, r.dtype, r.data)
}

func (r *RawTensor) mustLive() {
	if r.data == nil {
		panic(ErrReleased)
	}
}

// Map returns a new tensor of the same shape and precision holding f(v)
// for every element v.
func (r *RawTensor) Map(f func(v float64) float64) *RawTensor {
	r.mustLive()
	out := &RawTensor{
		data:  make([]float64, len(r.data)),
		shape: r.shape.Clone(),
		dtype: r.dtype,
	}
	for i, v := range r.data {
		out.data[i] = r.dtype.Round(f(v))
	}
	return out
}
