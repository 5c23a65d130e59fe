package cpu

import (
	"testing"

	"github.com/born-ml/forcescale/internal/tensor"
)

func TestIndexRows(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{0, 1, 10, 11, 20, 21}, tensor.Shape{3, 2}, tensor.Float64)

	result := backend.IndexRows(x, []int{2, 0, 2})
	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", result.Shape())
	}
	assertData(t, result, []float64{20, 21, 0, 1, 20, 21})
}

func TestIndexRows_OutOfRange(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{0, 1}, tensor.Shape{1, 2}, tensor.Float64)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range index")
		}
	}()
	backend.IndexRows(x, []int{1})
}

func TestScatterAddRows(t *testing.T) {
	backend := New()
	src := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, tensor.Float64)

	// Rows 0 and 2 of src both land on row 1.
	result := backend.ScatterAddRows(src, []int{1, 0, 1}, 3)
	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", result.Shape())
	}
	assertData(t, result, []float64{3, 4, 6, 8, 0, 0})
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)
	b := mustFromSlice(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2}, tensor.Float64)

	result := backend.MatMul(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("shape = %v, want [2 2]", result.Shape())
	}
	assertData(t, result, []float64{58, 64, 139, 154})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for inner dimension mismatch")
		}
	}()
	backend.MatMul(a, a)
}

func TestTranspose(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)

	result := backend.Transpose(x)
	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", result.Shape())
	}
	assertData(t, result, []float64{1, 4, 2, 5, 3, 6})
}
