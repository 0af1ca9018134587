package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"painel/internal/config"
	apphttp "painel/internal/http"
	"painel/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, port string) error {
	cfg, err := LoadAndValidateConfig(func(c *config.Config) {
		if port != "" {
			c.Port = port
		}
	})
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Addr(),
		PageSize:           cfg.PageSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}, store)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// A failed first load leaves the dashboard empty until POST /reload succeeds.
	if _, err := store.Load(ctx); err != nil {
		logger.Error("Initial load failed", log.FieldError, err, log.FieldOperation, log.OpStartup)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting painel server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
