package potential

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/forcescale/internal/tensor"
)

// LennardJones is the 12-6 pair potential
//
//	E = Σ_{i<j} 4ε [ (σ/r)^12 − (σ/r)^6 ]
//
// Pairs farther apart than Cutoff (measured on the unstrained positions) are
// skipped; Cutoff <= 0 keeps every pair.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
}

// DefaultLennardJones returns argon-like reduced units (ε = σ = 1, rc = 2.5σ).
func DefaultLennardJones() LennardJones {
	return LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
}

// Name implements Model.
func (lj LennardJones) Name() string {
	return "lennard-jones"
}

// Energy implements Model.
func (lj LennardJones) Energy(b tensor.Backend, pos, displacement *tensor.RawTensor) (*tensor.RawTensor, error) {
	if lj.Epsilon <= 0 || lj.Sigma <= 0 {
		return nil, fmt.Errorf("lennard-jones: epsilon %v and sigma %v must be positive", lj.Epsilon, lj.Sigma)
	}

	p, err := strain(b, pos, displacement)
	if err != nil {
		return nil, err
	}

	left, right := lj.pairs(pos)
	if len(left) == 0 {
		return nil, errors.New("lennard-jones: no atom pairs within cutoff")
	}

	d := b.Sub(b.IndexRows(p, left), b.IndexRows(p, right))
	r2 := b.SumLastDim(b.Mul(d, d))

	s2 := b.MulScalar(b.Pow(r2, -1), lj.Sigma*lj.Sigma) // (σ/r)²
	s6 := b.Pow(s2, 3)
	s12 := b.Mul(s6, s6)

	return b.Sum(b.MulScalar(b.Sub(s12, s6), 4*lj.Epsilon)), nil
}

// pairs lists the (i, j), i < j, atom pairs within the cutoff.
func (lj LennardJones) pairs(pos *tensor.RawTensor) (left, right []int) {
	n := pos.Shape()[0]
	data := pos.Data()
	rc2 := lj.Cutoff * lj.Cutoff

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if lj.Cutoff > 0 {
				var r2 float64
				for k := 0; k < 3; k++ {
					dk := data[i*3+k] - data[j*3+k]
					r2 += dk * dk
				}
				if r2 > rc2 || math.IsNaN(r2) {
					continue
				}
			}
			left = append(left, i)
			right = append(right, j)
		}
	}
	return left, right
}
