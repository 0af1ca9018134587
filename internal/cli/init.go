// Package cli holds the painel commands and the setup they share.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"painel/internal/backend"
	"painel/internal/config"
	"painel/internal/dataset"
	"painel/internal/events"
	"painel/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger at the configured level and makes it the default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.DefaultConfig().Level
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp, Output: out})
	log.SetDefault(logger)
	return logger
}

// OpenStore creates the configured source and the dataset store reading from it.
// When AMQP is configured every load is also published; a broker that cannot
// be reached is logged and skipped. The returned cleanup releases the source
// and the broker connection.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*dataset.Store, func(), error) {
	srcCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateSource(ctx, srcCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s source: %w", srcCfg.Type, err)
	}

	store := dataset.New(res.Source,
		dataset.WithLoadTimeout(cfg.LoadTimeout),
		dataset.WithLogger(logger))

	var closers []func() error
	if res.Cleanup != nil {
		closers = append(closers, res.Cleanup)
	}

	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, load events disabled",
				log.FieldComponent, log.ComponentAMQP,
				log.FieldError, err)
		} else {
			store.OnLoad(events.LoadHook(client, logger))
			closers = append(closers, client.Close)
			logger.Info("Publishing load events", "exchange", cfg.AMQPExchange)
		}
	}

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Cleanup failed", log.FieldError, err)
			}
		}
	}
	return store, cleanup, nil
}
