package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dukex/flowsuite/pkg/cmd"
	"github.com/dukex/flowsuite/pkg/config"
	"github.com/dukex/flowsuite/pkg/log"
	"github.com/dukex/flowsuite/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

// loadConfig reads the shared configuration and applies explicitly set flags on top.
func loadConfig(command *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	if command.IsSet("port") {
		cfg.Sandbox.Port = int(command.Int("port"))
	}

	if command.IsSet("database-url") {
		cfg.Sandbox.DatabaseURL = command.String("database-url")
	}

	if command.IsSet("event-bus") {
		cfg.Sandbox.EventBus = command.String("event-bus")
	}

	if command.IsSet("kafka-brokers") {
		cfg.Sandbox.KafkaBrokers = command.StringSlice("kafka-brokers")
	}

	if command.IsSet("execution-delay") {
		cfg.Sandbox.ExecutionDelay = command.Duration("execution-delay")
	}

	if command.IsSet("log-level") {
		cfg.Log.Level = command.String("log-level")
	}

	if command.IsSet("log-format") {
		cfg.Log.Format = command.String("log-format")
	}

	if command.IsSet("otel") {
		cfg.Otel.Enabled = command.Bool("otel")
	}

	return cfg, nil
}

func run(ctx context.Context, command *cli.Command) error {
	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}

	log.Setup(cfg.Log.Level, cfg.Log.Format)

	logger := log.WithModule("sandbox")
	logger.InfoContext(ctx, "Initializing flowsuite sandbox")

	if cfg.Otel.Enabled {
		tracerProvider, err := otelhelper.NewTracerProvider(ctx, cfg.Otel.ServiceName+"-sandbox")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	persistence, err := cmd.NewPersistence(ctx, logger, cfg.Sandbox.DatabaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(context.Background()); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(cfg.Sandbox.EventBus, cfg.Sandbox.KafkaBrokers, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sandbox := NewSandbox(logger, persistence, eventBus, cfg.Sandbox.ExecutionDelay)

	return sandbox.Serve(ctx, cfg.Sandbox.Port)
}
