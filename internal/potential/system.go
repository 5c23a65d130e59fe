package potential

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/forcescale/internal/tensor"
)

// System holds the differentiable leaf tensors of one structure.
type System struct {
	Positions    *tensor.RawTensor // (N, 3)
	Displacement *tensor.RawTensor // (3, 3), zeros
}

// NewSystem builds leaf tensors for coords in the given precision.
func NewSystem(coords [][3]float64, dtype tensor.DataType) (*System, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: no atoms", ErrShape)
	}
	flat := make([]float64, 0, len(coords)*3)
	for _, c := range coords {
		flat = append(flat, c[:]...)
	}

	pos, err := tensor.FromSlice(flat, tensor.Shape{len(coords), 3}, dtype)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	disp, err := tensor.Zeros(tensor.Shape{3, 3}, dtype)
	if err != nil {
		return nil, fmt.Errorf("displacement: %w", err)
	}
	return &System{Positions: pos, Displacement: disp}, nil
}

// NumAtoms returns the number of atoms.
func (s *System) NumAtoms() int {
	return s.Positions.Shape()[0]
}

// CubicLattice returns n×n×n points spaced a apart, starting at the origin.
func CubicLattice(n int, a float64) [][3]float64 {
	coords := make([][3]float64, 0, n*n*n)
	for i := range n {
		for j := range n {
			for k := range n {
				coords = append(coords, [3]float64{float64(i) * a, float64(j) * a, float64(k) * a})
			}
		}
	}
	return coords
}

// Jitter returns a copy of coords with every component displaced uniformly
// in [-amp, amp].
func Jitter(coords [][3]float64, amp float64, rng *rand.Rand) [][3]float64 {
	out := make([][3]float64, len(coords))
	for i, c := range coords {
		for k := range 3 {
			out[i][k] = c[k] + amp*(2*rng.Float64()-1)
		}
	}
	return out
}
