package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"electrolyser_tea/pkg/api/tea"
	"electrolyser_tea/pkg/core/config"
	"electrolyser_tea/pkg/core/metrics"
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Printf("[FATAL] failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database (optional)
	if cfg.Source.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.Source.DatabaseURL); err != nil {
			if cfg.Source.Kind == config.SourcePostgres {
				return err
			}
			logger.Warn("database unavailable, storing runs on disk", zap.Error(err))
		} else {
			defer store.Close()
			if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
				return err
			}
		}
	}

	// 2. Parameter source and run storage
	src, err := store.NewSource(cfg.Source)
	if err != nil {
		return err
	}
	runs, err := store.NewRunRepo(store.GetPool(), cfg.Cache.Dir)
	if err != nil {
		return err
	}

	// 3. Pipeline
	recorder := metrics.NewRecorder()
	orch := pipeline.NewOrchestrator(logger, pipeline.Options{
		AllowTaxLossCredit: cfg.Tax.AllowLossCredit,
		SweepSteps:         cfg.Sweep.Steps,
		SweepStepFraction:  cfg.Sweep.StepFraction,
		SweepWorkers:       cfg.Sweep.Workers,
	})
	orch.SetRepository(runs)
	orch.SetMetrics(recorder)

	// 4. Routes
	mux := http.NewServeMux()
	tea.NewHandler(src, orch, runs, logger).Register(mux)
	mux.Handle("/metrics", recorder.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("API server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("source", cfg.Source.Kind),
		zap.Strings("routes", []string{
			"POST /api/tea/run",
			"POST /api/tea/sweep",
			"GET  /api/tea/runs",
			"GET  /api/tea/report",
			"GET  /metrics",
		}),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if strings.EqualFold(level, "debug") {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}
