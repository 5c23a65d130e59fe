package scaler

import (
	"fmt"

	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/internal/tensor"
)

// Both entry points keep the graph so the energy can be differentiated again
// on a retry (or by the caller afterwards). Only the joint call tolerates an
// input the energy does not depend on; a forces-only call on a disconnected
// pos fails with autodiff.ErrUnusedInput.
var (
	forceOpts  = autodiff.GradOptions{RetainGraph: true}
	stressOpts = autodiff.GradOptions{RetainGraph: true, AllowUnused: true}
)

// ComputeForces performs a single scaled attempt: forces = -dE/dpos.
// The result has the shape of pos, typically (numAtoms, 3).
// Controller state is not modified.
func (c *Controller) ComputeForces(energy, pos *tensor.RawTensor) (*tensor.RawTensor, error) {
	if energy == nil || pos == nil {
		return nil, fmt.Errorf("compute forces: %w", ErrNilTensor)
	}

	grads, err := c.diff.Grad(c.Scale(energy), []*tensor.RawTensor{pos}, forceOpts)
	if err != nil {
		return nil, fmt.Errorf("compute forces: %w", err)
	}

	forces := c.descale(grads[0], -1)
	grads[0].Release()
	return forces, nil
}

// ComputeForcesAndStresses performs a single scaled attempt differentiating
// jointly with respect to positions and displacement. Forces are the negated
// position gradient; virials are the displacement gradient, not negated.
// Controller state is not modified.
func (c *Controller) ComputeForcesAndStresses(energy, pos, displacement *tensor.RawTensor) (forces, virials *tensor.RawTensor, err error) {
	if energy == nil || pos == nil || displacement == nil {
		return nil, nil, fmt.Errorf("compute forces and stresses: %w", ErrNilTensor)
	}

	grads, err := c.diff.Grad(c.Scale(energy), []*tensor.RawTensor{pos, displacement}, stressOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("compute forces and stresses: %w", err)
	}

	forces = c.descale(grads[0], -1)
	virials = c.descale(grads[1], 1)
	grads[0].Release()
	grads[1].Release()
	return forces, virials, nil
}

// descale returns sign*g/scale as a new tensor in g's precision, the fused
// form of negate-then-Unscale. The raw gradient can be released afterwards.
func (c *Controller) descale(g *tensor.RawTensor, sign float64) *tensor.RawTensor {
	if !c.cfg.Enabled {
		return g.Map(func(v float64) float64 { return sign * v })
	}
	s := c.state.ScaleFactor
	return g.Map(func(v float64) float64 { return sign * v / s })
}

// ComputeForcesWithUpdate computes forces, retrying under a shrinking scale
// factor until they are finite or MaxForceIters attempts have failed.
//
// On exhaustion the last non-finite forces are returned with a nil error and
// the observer's RetryExhausted fires. When disabled, exactly one attempt is
// made and state is untouched.
func (c *Controller) ComputeForcesWithUpdate(energy, pos *tensor.RawTensor) (*tensor.RawTensor, error) {
	results, err := c.retry(Forces, func() ([]*tensor.RawTensor, error) {
		f, err := c.ComputeForces(energy, pos)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{f}, nil
	})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// ComputeForcesAndStressesWithUpdate is the retrying form of
// ComputeForcesAndStresses. A result is finite only if both forces and
// virials are.
func (c *Controller) ComputeForcesAndStressesWithUpdate(energy, pos, displacement *tensor.RawTensor) (forces, virials *tensor.RawTensor, err error) {
	results, err := c.retry(ForcesAndStresses, func() ([]*tensor.RawTensor, error) {
		f, v, err := c.ComputeForcesAndStresses(energy, pos, displacement)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{f, v}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return results[0], results[1], nil
}

// retry runs attempt until its results are finite or the budget is spent.
//
//	ATTEMPT → CHECK → finite:               streak++, Update, RETURN
//	                → non-finite, budget:   streak=0, release, rewind, Update, ATTEMPT
//	                → non-finite, exhausted: warn, ABORT with last result
//
// The exhausting attempt does not call Update.
func (c *Controller) retry(kind Kind, attempt func() ([]*tensor.RawTensor, error)) ([]*tensor.RawTensor, error) {
	if !c.cfg.Enabled {
		return attempt()
	}

	rewinder, canRewind := c.diff.(GraphRewinder)
	failed := 0

	for {
		mark := 0
		if canRewind {
			mark = rewinder.Mark()
		}

		results, err := attempt()
		if err != nil {
			return nil, err
		}

		nans, infs := countNonFinite(results)
		if nans == 0 && infs == 0 {
			c.RecordFinite()
			c.observer.Completed(kind, failed+1)
			return results, nil
		}

		c.state.FiniteStreak = 0
		failed++
		c.observer.NonFinite(kind, failed, nans, infs)

		if failed == c.cfg.MaxForceIters {
			c.observer.RetryExhausted(kind, failed)
			c.observer.Completed(kind, failed)
			return results, nil
		}

		// Drop the failed attempt before recomputing.
		for _, r := range results {
			r.Release()
		}
		if canRewind {
			rewinder.Rewind(mark)
		}

		c.Update()
	}
}

func countNonFinite(results []*tensor.RawTensor) (nans, infs int) {
	for _, r := range results {
		n, i := r.CountNonFinite()
		nans += n
		infs += i
	}
	return nans, infs
}
