package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/forcescale/internal/tensor"
)

func TestSum(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)

	result := backend.Sum(x)
	if !result.Shape().IsScalar() || len(result.Shape()) != 0 {
		t.Fatalf("shape = %v, want ()", result.Shape())
	}
	if result.Item() != 21 {
		t.Errorf("Sum = %v, want 21", result.Item())
	}
}

// TestSum_Float16Accumulation checks that partial sums do not overflow
// when only the intermediate would.
func TestSum_Float16Accumulation(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{60000, 60000, -60000}, tensor.Shape{3}, tensor.Float16)

	if got := backend.Sum(x).Item(); got != 60000 {
		t.Errorf("Sum = %v, want 60000", got)
	}

	y := mustFromSlice(t, []float64{60000, 60000}, tensor.Shape{2}, tensor.Float16)
	if got := backend.Sum(y).Item(); !math.IsInf(got, 1) {
		t.Errorf("Sum = %v, want +Inf", got)
	}
}

func TestSumLastDim(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)

	result := backend.SumLastDim(x)
	if !result.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("shape = %v, want [2]", result.Shape())
	}
	assertData(t, result, []float64{6, 15})
}

func TestBroadcastTo(t *testing.T) {
	backend := New()
	s := mustFromSlice(t, []float64{7}, tensor.Shape{}, tensor.Float32)

	result := backend.BroadcastTo(s, tensor.Shape{2, 2})
	assertData(t, result, []float64{7, 7, 7, 7})
	if result.DType() != tensor.Float32 {
		t.Errorf("dtype = %v, want float32", result.DType())
	}

	x := mustFromSlice(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float32)
	assertData(t, backend.BroadcastTo(x, tensor.Shape{2}), []float64{1, 2})

	defer func() {
		if recover() == nil {
			t.Error("expected panic broadcasting [2] to [3]")
		}
	}()
	backend.BroadcastTo(x, tensor.Shape{3})
}

func TestRepeatLastDim(t *testing.T) {
	backend := New()
	x := mustFromSlice(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float64)

	result := backend.RepeatLastDim(x, 3)
	if !result.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("shape = %v, want [2 3]", result.Shape())
	}
	assertData(t, result, []float64{1, 1, 1, 2, 2, 2})
}
