// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the dense tensors that forces, virials and energies
// are carried in.
//
// Values are stored in float64 and rounded to the tensor's DataType on every
// write, so a Float16 tensor overflows to ±Inf past 65504 exactly as half
// precision hardware would.
//
//	pos, err := tensor.FromSlice([]float64{0, 0, 0, 1.1, 0, 0}, tensor.Shape{2, 3}, tensor.Float16)
//	if !forces.AllFinite() { ... }
package tensor

import "github.com/born-ml/forcescale/internal/tensor"

// Shape is a tensor shape; the empty shape is a scalar.
type Shape = tensor.Shape

// DataType is the storage precision of a tensor.
type DataType = tensor.DataType

// Supported precisions.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Float16 = tensor.Float16
)

// RawTensor is a dense row-major tensor.
type RawTensor = tensor.RawTensor

// Backend is the compute backend interface.
type Backend = tensor.Backend

// ErrReleased is the panic value when a released tensor is used.
var ErrReleased = tensor.ErrReleased

// ParseDataType parses names such as "float16", "fp32" or "half".
func ParseDataType(name string) (DataType, bool) {
	return tensor.ParseDataType(name)
}

// FromSlice creates a tensor holding values, rounded to dtype.
func FromSlice(values []float64, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.FromSlice(values, shape, dtype)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype)
}

// Full creates a tensor filled with v.
func Full(shape Shape, v float64, dtype DataType) (*RawTensor, error) {
	return tensor.Full(shape, v, dtype)
}
