// Package main provides the forcescale CLI.
//
// Usage:
//
//	forcescale [flags] run    (run.mode: sample or relax)
//	forcescale version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/born-ml/forcescale/internal/config"
	"github.com/born-ml/forcescale/internal/logger"
)

const version = "v0.1.0-dev"

var (
	configPath  = flag.String("config", "", "Path to YAML config file (defaults are used when empty)")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090 (overrides metrics.addr)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	dtype       = flag.String("dtype", "", "Precision: float16, float32, float64 (overrides run.dtype)")
	steps       = flag.Int("steps", 0, "Number of force evaluations (overrides run.steps)")
	mode        = flag.String("mode", "", "sample or relax (overrides run.mode)")
	outPath     = flag.String("out", "", "Write the final structure and forces as SafeTensors (overrides output.path)")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	switch flag.Arg(0) {
	case "version":
		fmt.Printf("forcescale %s\n", version)
		return
	case "run":
	default:
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "forcescale: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sum, err := simulate(ctx, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Error("run failed", "err", err)
		os.Exit(1)
	}

	logger.Log.Info("run finished",
		"steps", sum.Steps,
		"retried_steps", sum.RetriedSteps,
		"exhausted_steps", sum.ExhaustedSteps,
		"final_scale", sum.FinalScale,
		"max_abs_force", sum.MaxAbsForce,
		"converged", sum.Converged,
	)
}

func loadConfig() (config.File, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *dtype != "" {
		cfg.Run.DType = *dtype
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if *mode != "" {
		cfg.Run.Mode = *mode
	}
	if *steps > 0 {
		cfg.Run.Steps = *steps
	}
	return cfg, cfg.Validate()
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("metrics server", "err", err)
		}
	}()
	return srv
}

func usage() {
	fmt.Fprintf(os.Stderr, "forcescale %s - adaptive force/stress scaling for reduced-precision force fields\n\n", version)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  forcescale [flags] run    Evaluate forces on, or relax, a jittered cluster")
	fmt.Fprintln(os.Stderr, "  forcescale version        Show version")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}
