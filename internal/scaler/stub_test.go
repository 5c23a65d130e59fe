package scaler_test

import (
	"math"

	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/internal/scaler"
	"github.com/born-ml/forcescale/internal/tensor"
)

// step scripts one Grad call of the stub.
type step struct {
	posFinite  bool
	dispFinite bool
	err        error
}

func finite() step    { return step{posFinite: true, dispFinite: true} }
func nonFinite() step { return step{} }

// scriptedDiff is a deterministic Differentiator. Each Grad call consumes the
// next step (the last one repeats) and returns scale*g for finite gradients,
// where scale is the factor last passed to MulScalar.
type scriptedDiff struct {
	script   []step
	posGrad  []float64
	dispGrad []float64

	calls     int
	scaleSeen []float64
	marks     int
	rewinds   []int
	returned  []*tensor.RawTensor
	lastScale float64
}

func newScriptedDiff(script ...step) *scriptedDiff {
	return &scriptedDiff{
		script:    script,
		posGrad:   []float64{1, -2, 0.5, 0, 4, -0.25},
		dispGrad:  []float64{1, 0, 0, 0, 2, 0, 0, 0, 3},
		lastScale: 1,
	}
}

func (d *scriptedDiff) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	d.lastScale = s
	d.scaleSeen = append(d.scaleSeen, s)
	return x.Map(func(v float64) float64 { return v * s })
}

func (d *scriptedDiff) Grad(_ *tensor.RawTensor, inputs []*tensor.RawTensor, _ autodiff.GradOptions) ([]*tensor.RawTensor, error) {
	st := d.script[min(d.calls, len(d.script)-1)]
	d.calls++
	if st.err != nil {
		return nil, st.err
	}

	build := func(values []float64, shape tensor.Shape, ok bool) *tensor.RawTensor {
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v * d.lastScale
		}
		if !ok {
			out[0] = math.Inf(1)
			out[len(out)-1] = math.NaN()
		}
		r, err := tensor.FromSlice(out, shape, tensor.Float64)
		if err != nil {
			panic(err)
		}
		return r
	}

	grads := []*tensor.RawTensor{build(d.posGrad, inputs[0].Shape(), st.posFinite)}
	if len(inputs) > 1 {
		grads = append(grads, build(d.dispGrad, inputs[1].Shape(), st.dispFinite))
	}
	d.returned = append(d.returned, grads...)
	// Reset so a disabled controller (no MulScalar) sees unscaled grads.
	d.lastScale = 1
	return grads, nil
}

func (d *scriptedDiff) Mark() int {
	d.marks++
	return d.calls
}

func (d *scriptedDiff) Rewind(mark int) {
	d.rewinds = append(d.rewinds, mark)
}

// recordingObserver captures every signal for assertions.
type recordingObserver struct {
	updates   []scaler.State
	nonFinite []int
	exhausted []int
	completed []int
	kinds     []scaler.Kind
}

func (o *recordingObserver) ScaleUpdated(s scaler.State) {
	o.updates = append(o.updates, s)
}

func (o *recordingObserver) NonFinite(kind scaler.Kind, attempt, _, _ int) {
	o.kinds = append(o.kinds, kind)
	o.nonFinite = append(o.nonFinite, attempt)
}

func (o *recordingObserver) RetryExhausted(kind scaler.Kind, attempts int) {
	o.kinds = append(o.kinds, kind)
	o.exhausted = append(o.exhausted, attempts)
}

func (o *recordingObserver) Completed(_ scaler.Kind, attempts int) {
	o.completed = append(o.completed, attempts)
}

func positions() *tensor.RawTensor {
	r, _ := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float64)
	return r
}

func displacement() *tensor.RawTensor {
	r, _ := tensor.Zeros(tensor.Shape{3, 3}, tensor.Float64)
	return r
}

func energy() *tensor.RawTensor {
	r, _ := tensor.FromSlice([]float64{-3.5}, tensor.Shape{}, tensor.Float64)
	return r
}
