// Package config loads the forcescale YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/forcescale/internal/scaler"
	"github.com/born-ml/forcescale/internal/tensor"
)

// File is the top-level configuration document.
type File struct {
	Scaler  Scaler  `yaml:"scaler"`
	Run     Run     `yaml:"run"`
	Relax   Relax   `yaml:"relax"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
	Output  Output  `yaml:"output"`
}

// Scaler mirrors scaler.Config.
type Scaler struct {
	Enabled        bool    `yaml:"enabled"`
	InitScale      float64 `yaml:"init_scale"`
	GrowthFactor   float64 `yaml:"growth_factor"`
	BackoffFactor  float64 `yaml:"backoff_factor"`
	GrowthInterval int     `yaml:"growth_interval"`
	MaxForceIters  int     `yaml:"max_force_iters"`
}

// Run describes the simulated workload.
type Run struct {
	Mode     string  `yaml:"mode"`
	Model    string  `yaml:"model"`
	DType    string  `yaml:"dtype"`
	Steps    int     `yaml:"steps"`
	Lattice  int     `yaml:"lattice"`
	Spacing  float64 `yaml:"spacing"`
	Jitter   float64 `yaml:"jitter"`
	Stresses bool    `yaml:"stresses"`
	Seed     uint64  `yaml:"seed"`
	Workers  int     `yaml:"workers"`
}

// Relax configures geometry relaxation (run.mode: relax).
type Relax struct {
	Optimizer string  `yaml:"optimizer"`
	LR        float64 `yaml:"lr"`
	Momentum  float64 `yaml:"momentum"`
	MaxStep   float64 `yaml:"max_step"`
	FMax      float64 `yaml:"fmax"`
}

// Log selects the zerolog level and output format.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures the Prometheus endpoint. An empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Output selects where the final structure, forces and virials are written
// as SafeTensors. An empty Path disables it.
type Output struct {
	Path string `yaml:"path"`
}

// Model names accepted in run.model.
const (
	ModelLennardJones = "lennard-jones"
	ModelHarmonic     = "harmonic"
)

// Modes accepted in run.mode.
const (
	ModeSample = "sample"
	ModeRelax  = "relax"
)

// Optimizers accepted in relax.optimizer.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

func Default() File {
	sc := scaler.DefaultConfig()
	return File{
		Scaler: Scaler{
			Enabled:        sc.Enabled,
			InitScale:      sc.InitScale,
			GrowthFactor:   sc.GrowthFactor,
			BackoffFactor:  sc.BackoffFactor,
			GrowthInterval: sc.GrowthInterval,
			MaxForceIters:  sc.MaxForceIters,
		},
		Run: Run{
			Mode:     ModeSample,
			Model:    ModelLennardJones,
			DType:    "float16",
			Steps:    100,
			Lattice:  3,
			Spacing:  1.12,
			Jitter:   0.05,
			Stresses: true,
			Seed:     1,
		},
		Relax: Relax{
			Optimizer: OptimizerSGD,
			LR:        0.01,
			Momentum:  0.5,
			MaxStep:   0.05,
			FMax:      0.01,
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys, and validates it.
func Parse(data []byte, cfg *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return cfg.Validate()
}

func (f *File) Validate() error {
	if err := f.ScalerConfig().Validate(); err != nil {
		return err
	}

	r := f.Run
	if r.Mode != ModeSample && r.Mode != ModeRelax {
		return fmt.Errorf("invalid run.mode: %q (must be %q or %q)", r.Mode, ModeSample, ModeRelax)
	}
	if r.Model != ModelLennardJones && r.Model != ModelHarmonic {
		return fmt.Errorf("invalid run.model: %q (must be %q or %q)", r.Model, ModelLennardJones, ModelHarmonic)
	}
	if _, ok := tensor.ParseDataType(r.DType); !ok {
		return fmt.Errorf("invalid run.dtype: %q (must be float16, float32 or float64)", r.DType)
	}
	if r.Steps <= 0 {
		return fmt.Errorf("invalid run.steps: %d (must be positive)", r.Steps)
	}
	if r.Lattice < 2 {
		return fmt.Errorf("invalid run.lattice: %d (must be >= 2)", r.Lattice)
	}
	if r.Spacing <= 0 || math.IsInf(r.Spacing, 0) || math.IsNaN(r.Spacing) {
		return fmt.Errorf("invalid run.spacing: %v (must be positive)", r.Spacing)
	}
	if r.Jitter < 0 || r.Jitter >= r.Spacing/2 {
		return fmt.Errorf("invalid run.jitter: %v (must be in [0, spacing/2))", r.Jitter)
	}
	if r.Workers < 0 {
		return fmt.Errorf("invalid run.workers: %d (must be >= 0)", r.Workers)
	}

	x := f.Relax
	if x.Optimizer != OptimizerSGD && x.Optimizer != OptimizerAdam {
		return fmt.Errorf("invalid relax.optimizer: %q (must be %q or %q)", x.Optimizer, OptimizerSGD, OptimizerAdam)
	}
	if !(x.LR > 0) {
		return fmt.Errorf("invalid relax.lr: %v (must be positive)", x.LR)
	}
	if x.Momentum < 0 || x.Momentum >= 1 {
		return fmt.Errorf("invalid relax.momentum: %v (must be in [0, 1))", x.Momentum)
	}
	if x.MaxStep < 0 {
		return fmt.Errorf("invalid relax.max_step: %v (must be >= 0)", x.MaxStep)
	}
	if !(x.FMax > 0) {
		return fmt.Errorf("invalid relax.fmax: %v (must be positive)", x.FMax)
	}

	switch strings.ToLower(f.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %q (must be console or json)", f.Log.Format)
	}
	return nil
}

// ScalerConfig converts the scaler section.
func (f *File) ScalerConfig() scaler.Config {
	s := f.Scaler
	return scaler.Config{
		InitScale:      s.InitScale,
		GrowthFactor:   s.GrowthFactor,
		BackoffFactor:  s.BackoffFactor,
		GrowthInterval: s.GrowthInterval,
		MaxForceIters:  s.MaxForceIters,
		Enabled:        s.Enabled,
	}
}

// DataType returns the parsed run.dtype. It assumes Validate passed.
func (f *File) DataType() tensor.DataType {
	dt, _ := tensor.ParseDataType(f.Run.DType)
	return dt
}
