package main

// Periodic evaluation worker. Runs one cycle per tick; a redis run lock
// keeps multiple replicas from double-sending reminders within a tick.

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipeline-backend/internal/bootstrap"
	"pipeline-backend/internal/config"
	"pipeline-backend/internal/engine"
	"pipeline-backend/internal/shared/storage/db"
	"pipeline-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg, bootstrap.Options{
		DBOptions: db.DefaultWorkerOptions(),
	})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	runner := &engine.Runner{
		Engine:  app.EngineService,
		LockTTL: cfg.EvaluationInterval,
	}
	if app.Locker != nil {
		runner.Locker = engine.RedisLocker{Inner: app.Locker}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started interval=%s concurrency=%d", cfg.EvaluationInterval, cfg.EvaluationConcurrency)

	// First cycle immediately, then on the ticker.
	runCycle(ctx, runner)

	ticker := time.NewTicker(cfg.EvaluationInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker stopping")
			return
		case <-ticker.C:
			runCycle(ctx, runner)
		}
	}
}

func runCycle(ctx context.Context, runner *engine.Runner) {
	start := time.Now()
	summary, ran, err := runner.RunCycle(ctx, start.UTC())
	if err != nil && !errors.Is(err, context.Canceled) {
		telemetry.Error("engine.cycle.failed", map[string]any{"error": err.Error()})
		return
	}
	if !ran {
		return
	}
	telemetry.Info("engine.cycle.completed", map[string]any{
		"processed":   summary.Processed,
		"failed":      summary.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
