package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
// An empty Shape is a scalar.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// IsScalar reports whether the shape holds exactly one element.
// Both Shape{} and Shape{1} qualify.
func (s Shape) IsScalar() bool {
	return s.NumElements() == 1
}

// BroadcastScalar resolves the result shape of an elementwise binary op.
//
// Only two cases are supported: identical shapes, or one side holding a
// single element that is broadcast over the other.
//
//	(4, 3) + (4, 3) → (4, 3)
//	(4, 3) + ()     → (4, 3)
//	(1)    + (4, 3) → (4, 3)
//	(4, 3) + (3)    → error
func BroadcastScalar(a, b Shape) (Shape, error) {
	switch {
	case a.Equal(b):
		return a.Clone(), nil
	case b.IsScalar():
		return a.Clone(), nil
	case a.IsScalar():
		return b.Clone(), nil
	default:
		return nil, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v", a, b)
	}
}
