package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/asaply/orderflow/internal/api"
	"github.com/asaply/orderflow/internal/artifact"
	"github.com/asaply/orderflow/internal/config"
	"github.com/asaply/orderflow/internal/idempotency"
	"github.com/asaply/orderflow/internal/lease"
	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/internal/run"
	"github.com/asaply/orderflow/internal/runner"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the order execution HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg := config.Load()
	logger := log.New(os.Stdout, "orderflow: ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	merchants, err := merchant.OpenStore(cfg.MerchantDBPath)
	if err != nil {
		return err
	}
	defer merchants.Close()

	runs, closeRuns, err := buildRunService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRuns()

	leases, idem := buildCoordination(cfg, logger)

	artifacts, err := artifact.NewLocalStore(cfg.ArtifactDir, cfg.ArtifactBaseURL)
	if err != nil {
		return err
	}

	executor := &runner.LiveExecutor{
		CDPBaseURL:     cfg.CDPBaseURL,
		RenderDelay:    cfg.RenderDelay,
		WaitTimeout:    cfg.WaitTimeout,
		ExecuteTimeout: cfg.ExecuteTimeout,
		Artifacts:      artifacts,
		Logger:         logger,
	}

	worker := runner.New(runs, merchants, executor, leases, runner.Config{
		QueueSize:        cfg.QueueSize,
		Workers:          cfg.Workers,
		LeaseTTL:         cfg.LeaseTTL,
		LeaseWaitTimeout: cfg.LeaseWaitTimeout,
	}, logger)
	worker.Start(ctx)

	server := api.NewServer(api.Options{
		Runs:           runs,
		Merchants:      merchants,
		Queue:          worker,
		Idempotency:    idem,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger,
		ArtifactDir:    artifacts.RootDir(),
		ArtifactPath:   cfg.ArtifactBaseURL,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	worker.Wait()
	return nil
}

func buildRunService(ctx context.Context, cfg config.Config, logger *log.Logger) (run.Service, func(), error) {
	if cfg.PostgresDSN == "" {
		return run.NewInMemoryService(), func() {}, nil
	}
	svc, err := run.NewPostgresService(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	logger.Printf("run records backed by postgres")
	return svc, svc.Close, nil
}

func buildCoordination(cfg config.Config, logger *log.Logger) (lease.Manager, idempotency.Store) {
	if cfg.RedisAddr == "" {
		return lease.NewInMemoryManager(), idempotency.NewInMemoryStore()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Printf("lease and idempotency backed by redis at %s", cfg.RedisAddr)
	return lease.NewRedisManager(client, ""), idempotency.NewRedisStore(client, "")
}
