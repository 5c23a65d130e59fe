package autodiff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/internal/backend/cpu"
	"github.com/born-ml/forcescale/internal/tensor"
)

func newBackend() *autodiff.AutodiffBackend[*cpu.CPUBackend] {
	b := autodiff.New(cpu.New())
	b.Tape().StartRecording()
	return b
}

func mustSlice(t *testing.T, values []float64, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(values, shape, dtype)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return r
}

// TestAutodiffBackend_Name tests the Name method.
func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	expected := "Autodiff(CPU)"
	if backend.Name() != expected {
		t.Errorf("Name() = %s, want %s", backend.Name(), expected)
	}
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("Tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

// TestTape_NotRecording tests that ops are not recorded while stopped.
func TestTape_NotRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	a := mustSlice(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float32)
	backend.Add(a, a)

	if backend.Tape().NumOps() != 0 {
		t.Errorf("Expected no recorded ops, got %d", backend.Tape().NumOps())
	}
}

// TestTape_MarkRewind tests truncating the tape back to a mark.
func TestTape_MarkRewind(t *testing.T) {
	backend := newBackend()
	tape := backend.Tape()

	a := mustSlice(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float32)
	backend.Add(a, a)
	mark := tape.Mark()

	backend.Mul(a, a)
	backend.Sum(a)
	if tape.NumOps() != 3 {
		t.Fatalf("Expected 3 ops, got %d", tape.NumOps())
	}

	tape.Rewind(mark)
	if tape.NumOps() != 1 {
		t.Errorf("Expected 1 op after Rewind, got %d", tape.NumOps())
	}

	// Rewinding past the end is a no-op.
	tape.Rewind(10)
	if tape.NumOps() != 1 {
		t.Errorf("Expected 1 op after out-of-range Rewind, got %d", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("Tape should be empty after Clear(), got %d ops", tape.NumOps())
	}
	if !tape.IsRecording() {
		t.Error("Tape should still be recording after Clear()")
	}
}

// TestGrad_Square tests d(Σx²)/dx = 2x.
func TestGrad_Square(t *testing.T) {
	backend := newBackend()
	x := mustSlice(t, []float64{1, -2, 3}, tensor.Shape{3}, tensor.Float64)

	y := backend.Sum(backend.Mul(x, x))
	grads, err := backend.Grad(y, []*tensor.RawTensor{x}, autodiff.GradOptions{})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}

	expected := []float64{2, -4, 6}
	for i, v := range grads[0].Data() {
		if v != expected[i] {
			t.Errorf("grad[%d] = %f, want %f", i, v, expected[i])
		}
	}

	if backend.Tape().NumOps() != 0 {
		t.Errorf("Tape should be cleared without RetainGraph, got %d ops", backend.Tape().NumOps())
	}
}

// TestGrad_RetainGraph tests differentiating the same output twice.
func TestGrad_RetainGraph(t *testing.T) {
	backend := newBackend()
	x := mustSlice(t, []float64{3}, tensor.Shape{1}, tensor.Float64)
	y := backend.Sum(backend.Pow(x, 3))

	opts := autodiff.GradOptions{RetainGraph: true}
	first, err := backend.Grad(y, []*tensor.RawTensor{x}, opts)
	if err != nil {
		t.Fatalf("first Grad: %v", err)
	}
	second, err := backend.Grad(y, []*tensor.RawTensor{x}, opts)
	if err != nil {
		t.Fatalf("second Grad: %v", err)
	}

	if first[0].Item() != 27 || second[0].Item() != 27 {
		t.Errorf("d(x³)/dx at 3 = %f, %f, want 27", first[0].Item(), second[0].Item())
	}
}

// TestGrad_ScaledOutput tests that a MulScalar on the output scales gradients.
func TestGrad_ScaledOutput(t *testing.T) {
	backend := newBackend()
	x := mustSlice(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float32)
	y := backend.Sum(backend.Mul(x, x))
	scaled := backend.MulScalar(y, 256)

	grads, err := backend.Grad(scaled, []*tensor.RawTensor{x}, autodiff.GradOptions{})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	expected := []float64{512, 1024}
	for i, v := range grads[0].Data() {
		if v != expected[i] {
			t.Errorf("grad[%d] = %f, want %f", i, v, expected[i])
		}
	}
}

// TestGrad_UnusedInput tests AllowUnused semantics.
func TestGrad_UnusedInput(t *testing.T) {
	backend := newBackend()
	x := mustSlice(t, []float64{1, 2}, tensor.Shape{2}, tensor.Float32)
	unused := mustSlice(t, []float64{5, 5, 5, 5}, tensor.Shape{2, 2}, tensor.Float32)
	y := backend.Sum(x)

	_, err := backend.Grad(y, []*tensor.RawTensor{x, unused}, autodiff.GradOptions{RetainGraph: true})
	if !errors.Is(err, autodiff.ErrUnusedInput) {
		t.Fatalf("expected ErrUnusedInput, got %v", err)
	}

	grads, err := backend.Grad(y, []*tensor.RawTensor{x, unused}, autodiff.GradOptions{AllowUnused: true})
	if err != nil {
		t.Fatalf("Grad with AllowUnused: %v", err)
	}
	if !grads[1].Shape().Equal(tensor.Shape{2, 2}) {
		t.Errorf("unused grad shape = %v, want [2 2]", grads[1].Shape())
	}
	for i, v := range grads[1].Data() {
		if v != 0 {
			t.Errorf("unused grad[%d] = %f, want 0", i, v)
		}
	}
}

// TestGrad_Errors tests argument validation.
func TestGrad_Errors(t *testing.T) {
	backend := newBackend()
	x := mustSlice(t, []float64{1}, tensor.Shape{1}, tensor.Float32)

	if _, err := backend.Grad(nil, []*tensor.RawTensor{x}, autodiff.GradOptions{}); !errors.Is(err, autodiff.ErrNilTensor) {
		t.Errorf("nil output: expected ErrNilTensor, got %v", err)
	}
	if _, err := backend.Grad(x, []*tensor.RawTensor{x}, autodiff.GradOptions{}); !errors.Is(err, autodiff.ErrNoGraph) {
		t.Errorf("empty tape: expected ErrNoGraph, got %v", err)
	}

	y := backend.Sum(x)
	if _, err := backend.Grad(y, []*tensor.RawTensor{nil}, autodiff.GradOptions{}); !errors.Is(err, autodiff.ErrNilTensor) {
		t.Errorf("nil input: expected ErrNilTensor, got %v", err)
	}
}

// TestGrad_Float16Overflow tests that half-precision gradients overflow to Inf.
func TestGrad_Float16Overflow(t *testing.T) {
	backend := newBackend()
	x := mustSlice(t, []float64{300}, tensor.Shape{1}, tensor.Float16)
	y := backend.Sum(backend.Mul(x, x)) // dy/dx = 600
	scaled := backend.MulScalar(y, 256)  // 153600 > 65504

	grads, err := backend.Grad(scaled, []*tensor.RawTensor{x}, autodiff.GradOptions{})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	if !math.IsInf(grads[0].Item(), 1) {
		t.Errorf("expected +Inf gradient in float16, got %f", grads[0].Item())
	}
}
