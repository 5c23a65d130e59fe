package tensor

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !r.Shape().Equal(Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", r.Shape())
	}
	if r.DType() != Float32 {
		t.Errorf("DType() = %v, want float32", r.DType())
	}
	if r.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", r.NumElements())
	}
	for i, v := range r.Data() {
		if v != 0 {
			t.Errorf("[%d] = %v, want 0", i, v)
		}
	}

	if _, err := NewRaw(Shape{2, 0}, Float32); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestFromSlice(t *testing.T) {
	r, err := FromSlice([]float64{0.1, 70000}, Shape{2}, Float16)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if r.At(0) != Float16.Round(0.1) {
		t.Errorf("At(0) = %v, want rounded 0.1", r.At(0))
	}
	if !math.IsInf(r.At(1), 1) {
		t.Errorf("At(1) = %v, want +Inf", r.At(1))
	}

	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2}, Float64); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestFullOnes(t *testing.T) {
	r, err := Full(Shape{3}, 70000, Float32)
	if err != nil {
		t.Fatalf("Full failed: %v", err)
	}
	for _, v := range r.Data() {
		if v != 70000 {
			t.Errorf("value = %v, want 70000", v)
		}
	}

	ones, err := Ones(Shape{}, Float16)
	if err != nil {
		t.Fatalf("Ones failed: %v", err)
	}
	if ones.Item() != 1 {
		t.Errorf("Item() = %v, want 1", ones.Item())
	}
}

func TestSetRounds(t *testing.T) {
	r := MustRaw(Shape{1}, Float16)
	r.Set(0, 65520)
	if !math.IsInf(r.At(0), 1) {
		t.Errorf("Set(65520) on float16 = %v, want +Inf", r.At(0))
	}
}

func TestClone(t *testing.T) {
	r, _ := FromSlice([]float64{1, 2}, Shape{2}, Float64)
	c := r.Clone()
	c.Set(0, 5)

	if r.At(0) != 1 {
		t.Error("Clone shares storage with the original")
	}
	c.Shape()[0] = 9
	if r.Shape()[0] != 2 {
		t.Error("Clone shares shape with the original")
	}
}

func TestCountNonFinite(t *testing.T) {
	r, _ := FromSlice([]float64{1, math.NaN(), math.Inf(1), math.Inf(-1), 0}, Shape{5}, Float64)

	nans, infs := r.CountNonFinite()
	if nans != 1 || infs != 2 {
		t.Errorf("CountNonFinite() = %d, %d; want 1, 2", nans, infs)
	}
	if r.AllFinite() {
		t.Error("AllFinite() = true with NaN and Inf present")
	}

	ok, _ := FromSlice([]float64{1, -65504}, Shape{2}, Float16)
	if !ok.AllFinite() {
		t.Error("AllFinite() = false for finite values")
	}
}

func TestRelease(t *testing.T) {
	r, _ := FromSlice([]float64{1, 2}, Shape{2}, Float64)
	r.Release()
	r.Release()

	if !r.IsReleased() {
		t.Fatal("IsReleased() = false after Release")
	}
	if !strings.Contains(r.String(), "released") {
		t.Errorf("String() = %q", r.String())
	}

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrReleased) {
			t.Errorf("expected ErrReleased panic, got %v", err)
		}
	}()
	r.At(0)
}

func TestReleaseNil(_ *testing.T) {
	var r *RawTensor
	r.Release()
}

func TestMap(t *testing.T) {
	r, _ := FromSlice([]float64{100, 200}, Shape{2}, Float16)
	out := r.Map(func(v float64) float64 { return v * 400 })

	if out.At(0) != 40000 {
		t.Errorf("At(0) = %v, want 40000", out.At(0))
	}
	if !math.IsInf(out.At(1), 1) {
		t.Errorf("At(1) = %v, want +Inf", out.At(1))
	}
	if r.At(0) != 100 {
		t.Error("Map modified its receiver")
	}
}

func TestItemPanicsOnVector(t *testing.T) {
	r := MustRaw(Shape{2}, Float64)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	r.Item()
}
