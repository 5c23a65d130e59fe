package optim

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/forcescale/internal/tensor"
)

// ForceFunc returns the forces at the current positions.
type ForceFunc func(pos *tensor.RawTensor) (*tensor.RawTensor, error)

// Result summarizes a relaxation.
type Result struct {
	Steps     int     // Optimizer steps taken
	Skipped   int     // Evaluations whose forces were non-finite
	MaxForce  float64 // Largest per-atom force norm at the last evaluation
	Converged bool    // MaxForce <= fmax was reached
}

// Relax moves pos in place until the largest per-atom force is at most
// fmax or maxSteps evaluations have run. Non-finite forces skip the step
// and leave pos unchanged.
func Relax(ctx context.Context, pos *tensor.RawTensor, forces ForceFunc, opt Optimizer, fmax float64, maxSteps int) (Result, error) {
	var res Result

	for range maxSteps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		f, err := forces(pos)
		if err != nil {
			return res, fmt.Errorf("relax step %d: %w", res.Steps, err)
		}

		res.MaxForce = MaxForce(f)
		if res.MaxForce <= fmax {
			f.Release()
			res.Converged = true
			return res, nil
		}

		err = opt.Step(pos, f)
		f.Release()
		switch {
		case errors.Is(err, ErrNonFinite):
			res.Skipped++
		case err != nil:
			return res, err
		default:
			res.Steps++
		}
	}
	return res, nil
}
