// cmd/energy-agent/serve.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energy-agent/internal/agent"
	"energy-agent/internal/api"
	"energy-agent/internal/common/camunda"
	"energy-agent/internal/common/config"
	"energy-agent/internal/common/transport"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the NATS subscriber and the Zeebe job workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer zapLog.Sync()

	zapLog.Info("starting energy agent",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	a, err := agent.New(cfg, log, agent.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Connect(ctx, 15, 2*time.Second); err != nil {
		return err
	}
	zapLog.Info("backends connected")

	// --- NATS ---
	var nt *transport.NATSTransport
	if cfg.Transport.NATS.Enabled {
		nt, err = transport.NewNATSTransport(cfg.Transport.NATS, cfg.App.Name, a.Pipeline, log)
		if err != nil {
			return err
		}
		if err := nt.Start(); err != nil {
			nt.Close()
			return err
		}
		defer nt.Close()
	}

	// --- Zeebe ---
	var workers []worker.JobWorker
	if cfg.Camunda.Enabled {
		zc, err := camunda.NewClient(cfg.Camunda)
		if err != nil {
			return fmt.Errorf("zeebe client: %w", err)
		}
		defer zc.Close()
		a.AddCheck("zeebe", zc.HealthCheck)
		workers = camunda.StartWorkers(zc.GetClient(), cfg, a.Registrations, zapLog)
		zapLog.Info("job workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP ---
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler: api.NewServer(a.Pipeline, a, a.Catalog, config.GetDuration(cfg.Server.WriteTimeout), log).
			WithDataset(a.Postgres()).
			Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	runErr := serveHTTP(ctx, srv, zapLog)

	camunda.StopWorkers(workers)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	zapLog.Info("energy agent stopped")
	return runErr
}

// serveHTTP runs srv until ctx is done or the listener fails. Only a listener
// failure is returned; the caller shuts the server down.
func serveHTTP(ctx context.Context, srv *http.Server, zapLog *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		zapLog.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
		return nil
	case err := <-serveErr:
		if err == nil {
			return nil
		}
		zapLog.Error("http server failed", zap.Error(err))
		return fmt.Errorf("http server: %w", err)
	}
}
