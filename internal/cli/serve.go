package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/eshaffer321/bats-attribution/internal/api"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/config"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/logging"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/metrics"
)

const (
	// sessionSweepInterval is how often idle sessions are checked for eviction.
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 30 * time.Second
)

// RunServe runs the API server until ctx is cancelled, then drains
// in-flight requests.
func RunServe(ctx context.Context, cfg *config.Config, flags ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	recorder := metrics.NewRecorder()
	svc := reconcile.NewService(cfg.CostTable(), recorder, logger)
	sessions := reconcile.NewSessionStore(cfg.SessionIdleTTL(), recorder, logger)
	sessions.StartCleanup(sessionSweepInterval)
	defer sessions.Close()

	apiCfg := api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		MaxUploadBytes: int64(cfg.API.MaxUploadMB) << 20,
		PreviewRows:    cfg.Ingest.PreviewRows,
	}
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}
	server := api.NewServer(apiCfg, svc, sessions, recorder, logger)

	logger.Info("lead costs loaded", "sources", len(cfg.LeadCosts), "session_ttl", cfg.SessionIdleTTL())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
