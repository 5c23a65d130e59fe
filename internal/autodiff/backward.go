package autodiff

import (
	"errors"
	"fmt"

	"github.com/born-ml/forcescale/internal/tensor"
)

// Errors returned by Grad.
var (
	ErrNilTensor   = errors.New("autodiff: nil tensor")
	ErrNoGraph     = errors.New("autodiff: output is not connected to a recorded graph")
	ErrUnusedInput = errors.New("autodiff: input was not used in the graph (set AllowUnused)")
	ErrBackward    = errors.New("autodiff: backward pass failed")
)

// GradOptions control a Grad call.
type GradOptions struct {
	// RetainGraph keeps the tape after the backward pass so the same
	// output can be differentiated again. Without it the tape is cleared.
	RetainGraph bool

	// AllowUnused returns a zero gradient for inputs the output does not
	// depend on instead of failing with ErrUnusedInput.
	AllowUnused bool
}

// Grad computes d(output)/d(input) for each input, seeding the backward
// pass with ones shaped like output.
//
// The returned gradients are owned by the caller and aligned with inputs.
// Gradients are computed in the precision of the tensors on the tape, so a
// Float16 graph can legitimately return ±Inf.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	y := backend.Sum(backend.Mul(x, x))
//	grads, err := backend.Grad(y, []*tensor.RawTensor{x}, autodiff.GradOptions{})
func (b *AutodiffBackend[B]) Grad(output *tensor.RawTensor, inputs []*tensor.RawTensor, opts GradOptions) (grads []*tensor.RawTensor, err error) {
	if output == nil {
		return nil, fmt.Errorf("grad output: %w", ErrNilTensor)
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("grad input %d: %w", i, ErrNilTensor)
		}
	}
	if b.tape.NumOps() == 0 {
		return nil, ErrNoGraph
	}

	seed, err := tensor.Ones(output.Shape(), output.DType())
	if err != nil {
		return nil, fmt.Errorf("grad: failed to create output gradient: %w", err)
	}

	// Backends panic on shape mismatches; surface those as errors so the
	// caller sees a failed primitive rather than a crashed process.
	defer func() {
		if r := recover(); r != nil {
			grads = nil
			err = fmt.Errorf("%w: %v", ErrBackward, r)
		}
	}()

	all := b.tape.Backward(output, seed, b.inner)
	if !opts.RetainGraph {
		b.tape.Clear()
	}

	grads = make([]*tensor.RawTensor, len(inputs))
	for i, in := range inputs {
		g, ok := all[in]
		switch {
		case ok:
			grads[i] = g.Clone()
		case opts.AllowUnused:
			grads[i], err = tensor.Zeros(in.Shape(), in.DType())
			if err != nil {
				return nil, fmt.Errorf("grad input %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("grad input %d %v: %w", i, in.Shape(), ErrUnusedInput)
		}
	}
	return grads, nil
}

// Mark returns the current tape position (see GradientTape.Mark).
func (b *AutodiffBackend[B]) Mark() int {
	return b.tape.Mark()
}

// Rewind truncates the tape to mark (see GradientTape.Rewind).
func (b *AutodiffBackend[B]) Rewind(mark int) {
	b.tape.Rewind(mark)
}
