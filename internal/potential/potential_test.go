package potential_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/internal/backend/cpu"
	"github.com/born-ml/forcescale/internal/potential"
	"github.com/born-ml/forcescale/internal/scaler"
	"github.com/born-ml/forcescale/internal/tensor"
)

func newBackend() *autodiff.AutodiffBackend[*cpu.CPUBackend] {
	b := autodiff.New(cpu.New())
	b.Tape().StartRecording()
	return b
}

func TestHarmonic_Forces(t *testing.T) {
	b := newBackend()
	sys, err := potential.NewSystem([][3]float64{{1, 2, 3}, {-1, 0, 0.5}}, tensor.Float64)
	require.NoError(t, err)

	model := potential.Harmonic{K: 3, Center: [3]float64{1, 0, 0}}
	energy, err := model.Energy(b, sys.Positions, nil)
	require.NoError(t, err)
	// ½·3·(0+4+9 + 4+0+0.25) = 25.875
	assert.InDelta(t, 25.875, energy.Item(), 1e-12)

	ctrl, err := scaler.New(scaler.DefaultConfig(), b)
	require.NoError(t, err)
	forces, err := ctrl.ComputeForcesWithUpdate(energy, sys.Positions)
	require.NoError(t, err)

	want := []float64{0, -6, -9, 6, 0, -1.5}
	for i, w := range want {
		assert.InDelta(t, w, forces.At(i), 1e-12, "index %d", i)
	}
}

func TestLennardJones_DimerForce(t *testing.T) {
	b := newBackend()
	r := 1.1
	sys, err := potential.NewSystem([][3]float64{{0, 0, 0}, {r, 0, 0}}, tensor.Float64)
	require.NoError(t, err)

	lj := potential.DefaultLennardJones()
	energy, err := lj.Energy(b, sys.Positions, nil)
	require.NoError(t, err)

	wantE := 4 * (math.Pow(r, -12) - math.Pow(r, -6))
	assert.InDelta(t, wantE, energy.Item(), 1e-12)

	ctrl, err := scaler.New(scaler.DefaultConfig(), b)
	require.NoError(t, err)
	forces, err := ctrl.ComputeForces(energy, sys.Positions)
	require.NoError(t, err)

	// dE/dr = 4(−12 r^−13 + 6 r^−7); the force on atom 1 is −dE/dr along +x.
	dEdr := 4 * (-12*math.Pow(r, -13) + 6*math.Pow(r, -7))
	assert.InDelta(t, dEdr, forces.At(0), 1e-9)
	assert.InDelta(t, -dEdr, forces.At(3), 1e-9)
	for _, i := range []int{1, 2, 4, 5} {
		assert.InDelta(t, 0, forces.At(i), 1e-12)
	}
}

func TestLennardJones_CutoffSkipsPairs(t *testing.T) {
	b := newBackend()
	sys, err := potential.NewSystem([][3]float64{{0, 0, 0}, {1.1, 0, 0}, {10, 0, 0}}, tensor.Float64)
	require.NoError(t, err)

	energy, err := potential.DefaultLennardJones().Energy(b, sys.Positions, nil)
	require.NoError(t, err)

	ctrl, err := scaler.New(scaler.DefaultConfig(), b)
	require.NoError(t, err)
	forces, err := ctrl.ComputeForces(energy, sys.Positions)
	require.NoError(t, err)

	for k := range 3 {
		assert.InDelta(t, 0, forces.At(6+k), 1e-15, "far atom must feel no force")
	}

	_, err = potential.DefaultLennardJones().Energy(b, mustPositions(t, [][3]float64{{0, 0, 0}, {9, 0, 0}}), nil)
	assert.Error(t, err)
}

// TestLennardJones_Virial checks dE/d(displacement) against finite
// differences of the strained energy.
func TestLennardJones_Virial(t *testing.T) {
	coords := potential.Jitter(potential.CubicLattice(2, 1.12), 0.05, rand.New(rand.NewPCG(1, 2)))
	lj := potential.DefaultLennardJones()

	b := newBackend()
	sys, err := potential.NewSystem(coords, tensor.Float64)
	require.NoError(t, err)
	energy, err := lj.Energy(b, sys.Positions, sys.Displacement)
	require.NoError(t, err)

	ctrl, err := scaler.New(scaler.DefaultConfig(), b)
	require.NoError(t, err)
	forces, virials, err := ctrl.ComputeForcesAndStressesWithUpdate(energy, sys.Positions, sys.Displacement)
	require.NoError(t, err)
	require.True(t, forces.AllFinite())

	// Newton's third law: net force vanishes.
	for k := range 3 {
		var sum float64
		for i := range sys.NumAtoms() {
			sum += forces.At(i*3 + k)
		}
		assert.InDelta(t, 0, sum, 1e-9)
	}

	plain := cpu.New()
	const eps = 1e-6
	for idx := range 9 {
		plus, _ := tensor.Zeros(tensor.Shape{3, 3}, tensor.Float64)
		minus, _ := tensor.Zeros(tensor.Shape{3, 3}, tensor.Float64)
		plus.Set(idx, eps)
		minus.Set(idx, -eps)

		ep, err := lj.Energy(plain, sys.Positions, plus)
		require.NoError(t, err)
		em, err := lj.Energy(plain, sys.Positions, minus)
		require.NoError(t, err)

		numeric := (ep.Item() - em.Item()) / (2 * eps)
		assert.InDelta(t, numeric, virials.At(idx), 1e-4*math.Max(1, math.Abs(numeric)), "virial[%d]", idx)
	}
}

// TestLennardJones_Float16Overflow compresses a dimer until the half
// precision gradient overflows at the default scale and checks that the
// controller backs off to a finite result.
func TestLennardJones_Float16Overflow(t *testing.T) {
	b := newBackend()
	sys, err := potential.NewSystem([][3]float64{{0, 0, 0}, {0.8, 0, 0}}, tensor.Float16)
	require.NoError(t, err)

	energy, err := potential.DefaultLennardJones().Energy(b, sys.Positions, nil)
	require.NoError(t, err)

	ctrl, err := scaler.New(scaler.DefaultConfig(), b)
	require.NoError(t, err)

	raw, err := ctrl.ComputeForces(energy, sys.Positions)
	require.NoError(t, err)
	require.False(t, raw.AllFinite(), "scale 256 should overflow float16")

	forces, err := ctrl.ComputeForcesWithUpdate(energy, sys.Positions)
	require.NoError(t, err)
	assert.True(t, forces.AllFinite())
	assert.Less(t, ctrl.State().ScaleFactor, 256.0)

	// Compare against the float64 reference within half-precision tolerance.
	r := tensor.Float16.Round(0.8)
	dEdr := 4 * (-12*math.Pow(r, -13) + 6*math.Pow(r, -7))
	assert.InEpsilon(t, -dEdr, forces.At(3), 0.02)
}

func TestModels_ShapeErrors(t *testing.T) {
	b := cpu.New()
	bad, err := tensor.Zeros(tensor.Shape{4, 2}, tensor.Float32)
	require.NoError(t, err)
	pos := mustPositions(t, [][3]float64{{0, 0, 0}, {1, 0, 0}})
	badDisp, err := tensor.Zeros(tensor.Shape{2, 2}, tensor.Float32)
	require.NoError(t, err)

	for _, m := range []potential.Model{potential.DefaultLennardJones(), potential.Harmonic{K: 1}} {
		_, err := m.Energy(b, bad, nil)
		assert.ErrorIs(t, err, potential.ErrShape, m.Name())

		_, err = m.Energy(b, pos, badDisp)
		assert.ErrorIs(t, err, potential.ErrShape, m.Name())
	}
}

func TestNewSystem(t *testing.T) {
	sys, err := potential.NewSystem(potential.CubicLattice(2, 1.5), tensor.Float32)
	require.NoError(t, err)

	assert.Equal(t, 8, sys.NumAtoms())
	assert.Equal(t, tensor.Shape{8, 3}, sys.Positions.Shape())
	assert.Equal(t, tensor.Shape{3, 3}, sys.Displacement.Shape())
	assert.Equal(t, 1.5, sys.Positions.At(23))

	_, err = potential.NewSystem(nil, tensor.Float32)
	assert.ErrorIs(t, err, potential.ErrShape)
}

func TestJitter(t *testing.T) {
	base := potential.CubicLattice(2, 1)
	out := potential.Jitter(base, 0.1, rand.New(rand.NewPCG(7, 7)))

	require.Len(t, out, len(base))
	for i := range base {
		for k := range 3 {
			assert.LessOrEqual(t, math.Abs(out[i][k]-base[i][k]), 0.1)
		}
	}
}

func mustPositions(t *testing.T, coords [][3]float64) *tensor.RawTensor {
	t.Helper()
	sys, err := potential.NewSystem(coords, tensor.Float64)
	require.NoError(t, err)
	return sys.Positions
}
