package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/born-ml/forcescale/internal/autodiff"
	"github.com/born-ml/forcescale/internal/backend/cpu"
	"github.com/born-ml/forcescale/internal/config"
	"github.com/born-ml/forcescale/internal/logger"
	"github.com/born-ml/forcescale/internal/optim"
	"github.com/born-ml/forcescale/internal/parallel"
	"github.com/born-ml/forcescale/internal/potential"
	"github.com/born-ml/forcescale/internal/scaler"
	"github.com/born-ml/forcescale/internal/serialization"
	"github.com/born-ml/forcescale/internal/tensor"
)

type summary struct {
	Steps          int
	RetriedSteps   int
	ExhaustedSteps int
	FinalScale     float64
	MaxAbsForce    float64
	Converged      bool // relax mode only
}

// tally counts retried and exhausted calls.
type tally struct {
	scaler.NopObserver
	retried   int
	exhausted int
}

func (t *tally) RetryExhausted(scaler.Kind, int) { t.exhausted++ }

func (t *tally) Completed(_ scaler.Kind, attempts int) {
	if attempts > 1 {
		t.retried++
	}
}

// session bundles what every evaluation needs.
type session struct {
	backend *autodiff.AutodiffBackend[*cpu.CPUBackend]
	ctrl    *scaler.Controller
	model   potential.Model
	counts  *tally

	// final holds the tensors written to output.path.
	final map[string]*tensor.RawTensor
}

func newSession(cfg config.File) (*session, error) {
	model, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}

	backend := autodiff.New(cpu.NewWithConfig(parallelConfig(cfg.Run.Workers)))
	sc := cfg.ScalerConfig()
	counts := &tally{}
	obs := scaler.MultiObserver{
		scaler.LogObserver{},
		scaler.NewMetricsObserver(scaler.State{ScaleFactor: sc.InitScale}),
		counts,
	}
	ctrl, err := scaler.New(sc, backend, scaler.WithObserver(obs))
	if err != nil {
		return nil, err
	}
	return &session{backend: backend, ctrl: ctrl, model: model, counts: counts}, nil
}

// simulate runs cfg.Run.Mode on a jittered cubic cluster.
func simulate(ctx context.Context, cfg config.File) (summary, error) {
	s, err := newSession(cfg)
	if err != nil {
		return summary{}, err
	}

	dtype := cfg.DataType()
	lattice := potential.CubicLattice(cfg.Run.Lattice, cfg.Run.Spacing)
	rng := rand.New(rand.NewPCG(cfg.Run.Seed, cfg.Run.Seed^0x9e3779b97f4a7c15))

	logger.Log.Info("starting run",
		"mode", cfg.Run.Mode,
		"model", s.model.Name(),
		"dtype", dtype.String(),
		"atoms", len(lattice),
		"steps", cfg.Run.Steps,
		"scaler", s.ctrl.String(),
	)

	var sum summary
	if cfg.Run.Mode == config.ModeRelax {
		sum, err = s.relax(ctx, cfg, potential.Jitter(lattice, cfg.Run.Jitter, rng), dtype)
	} else {
		sum, err = s.sample(ctx, cfg, lattice, rng, dtype)
	}

	sum.RetriedSteps = s.counts.retried
	sum.ExhaustedSteps = s.counts.exhausted
	sum.FinalScale = s.ctrl.State().ScaleFactor
	if err != nil {
		return sum, err
	}

	if cfg.Output.Path != "" && s.final != nil {
		meta := map[string]string{
			"mode":         cfg.Run.Mode,
			"model":        s.model.Name(),
			"dtype":        dtype.String(),
			"steps":        strconv.Itoa(sum.Steps),
			"scale_factor": strconv.FormatFloat(sum.FinalScale, 'g', -1, 64),
		}
		if err := serialization.WriteSafeTensors(cfg.Output.Path, s.final, meta); err != nil {
			return sum, fmt.Errorf("write output: %w", err)
		}
		logger.Log.Info("wrote output", "path", cfg.Output.Path, "tensors", len(s.final))
	}
	return sum, nil
}

// keep records the tensors of the latest evaluation for output.path and
// releases the previous ones.
func (s *session) keep(positions, forces, virials *tensor.RawTensor) {
	for name, t := range s.final {
		if name != "positions" {
			t.Release()
		}
	}
	s.final = map[string]*tensor.RawTensor{"positions": positions, "forces": forces}
	if virials != nil {
		s.final["virials"] = virials
	}
}

// sample evaluates forces (and virials when run.stresses is set) on
// cfg.Run.Steps independently jittered copies of lattice.
func (s *session) sample(ctx context.Context, cfg config.File, lattice [][3]float64, rng *rand.Rand, dtype tensor.DataType) (summary, error) {
	var sum summary
	for step := range cfg.Run.Steps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		sys, err := potential.NewSystem(potential.Jitter(lattice, cfg.Run.Jitter, rng), dtype)
		if err != nil {
			return sum, err
		}
		forces, virials, err := s.evaluate(sys, cfg.Run.Stresses)
		if err != nil {
			return sum, fmt.Errorf("step %d: %w", step, err)
		}

		for _, f := range forces.Data() {
			if !math.IsNaN(f) && !math.IsInf(f, 0) {
				sum.MaxAbsForce = math.Max(sum.MaxAbsForce, math.Abs(f))
			}
		}
		s.keep(sys.Positions, forces, virials)
		sum.Steps++
	}
	return sum, nil
}

// relax minimizes the energy of one structure, at most cfg.Run.Steps
// force evaluations.
func (s *session) relax(ctx context.Context, cfg config.File, coords [][3]float64, dtype tensor.DataType) (summary, error) {
	sys, err := potential.NewSystem(coords, dtype)
	if err != nil {
		return summary{}, err
	}

	res, err := optim.Relax(ctx, sys.Positions, func(*tensor.RawTensor) (*tensor.RawTensor, error) {
		forces, _, err := s.evaluate(sys, false)
		return forces, err
	}, buildOptimizer(cfg.Relax), cfg.Relax.FMax, cfg.Run.Steps)

	sum := summary{Steps: res.Steps, MaxAbsForce: res.MaxForce, Converged: res.Converged}
	if err != nil {
		return sum, err
	}
	logger.Log.Info("relaxation finished",
		"steps", res.Steps, "skipped", res.Skipped, "fmax", res.MaxForce, "converged", res.Converged)

	if cfg.Output.Path != "" {
		forces, virials, err := s.evaluate(sys, cfg.Run.Stresses)
		if err != nil {
			return sum, fmt.Errorf("final evaluation: %w", err)
		}
		s.keep(sys.Positions, forces, virials)
	}
	return sum, nil
}

// evaluate records one energy on a fresh tape and returns the forces, and
// the virials when stresses is set.
func (s *session) evaluate(sys *potential.System, stresses bool) (forces, virials *tensor.RawTensor, err error) {
	tape := s.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	var disp *tensor.RawTensor
	if stresses {
		disp = sys.Displacement
	}
	energy, err := s.model.Energy(s.backend, sys.Positions, disp)
	if err != nil {
		return nil, nil, err
	}

	if !stresses {
		forces, err = s.ctrl.ComputeForcesWithUpdate(energy, sys.Positions)
		return forces, nil, err
	}
	return s.ctrl.ComputeForcesAndStressesWithUpdate(energy, sys.Positions, sys.Displacement)
}

func buildModel(cfg config.File) (potential.Model, error) {
	switch cfg.Run.Model {
	case config.ModelLennardJones:
		return potential.DefaultLennardJones(), nil
	case config.ModelHarmonic:
		c := float64(cfg.Run.Lattice-1) * cfg.Run.Spacing / 2
		return potential.Harmonic{K: 1, Center: [3]float64{c, c, c}}, nil
	default:
		return nil, fmt.Errorf("unknown model %q", cfg.Run.Model)
	}
}

func buildOptimizer(r config.Relax) optim.Optimizer {
	base := optim.Config{LR: r.LR, MaxStep: r.MaxStep}
	if r.Optimizer == config.OptimizerAdam {
		return optim.NewAdam(optim.AdamConfig{Config: base})
	}
	return optim.NewSGD(optim.SGDConfig{Config: base, Momentum: r.Momentum})
}

// parallelConfig maps run.workers to a CPU backend config; 0 uses every CPU.
func parallelConfig(workers int) parallel.Config {
	cfg := parallel.DefaultConfig()
	if workers > 0 {
		cfg.NumWorkers = workers
		cfg.Enabled = workers > 1
	}
	return cfg
}
