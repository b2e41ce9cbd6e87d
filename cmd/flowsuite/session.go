package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flowsuite/pkg/client"
	"github.com/dukex/flowsuite/pkg/config"
	"github.com/dukex/flowsuite/pkg/log"
	"github.com/dukex/flowsuite/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

// session holds what every subcommand needs: a configured client and an output printer.
type session struct {
	client  *client.Client
	logger  *slog.Logger
	printer *printer
	close   func()
}

func newSession(ctx context.Context, command *cli.Command) (*session, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	if command.IsSet("api-url") {
		cfg.API.URL = command.String("api-url")
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

	printer, err := newPrinter(command.Root().Writer, command.String("output"))
	if err != nil {
		return nil, err
	}

	log.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := log.WithModule("cli")

	closeFn := func() {}

	if cfg.Otel.Enabled {
		tracerProvider, err := otelhelper.NewTracerProvider(ctx, cfg.Otel.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		closeFn = func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Failed to shutdown tracer provider", "error", err)
			}
		}
	}

	opts := []client.Option{client.WithLogger(logger)}
	for key, value := range cfg.API.Headers {
		opts = append(opts, client.WithHeader(key, value))
	}

	api, err := client.New(cfg.API.URL, opts...)
	if err != nil {
		closeFn()

		return nil, err
	}

	return &session{
		client:  api,
		logger:  logger,
		printer: printer,
		close:   closeFn,
	}, nil
}

// action wraps a subcommand body with session setup and teardown.
func action(fn func(ctx context.Context, command *cli.Command, s *session) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		s, err := newSession(ctx, command)
		if err != nil {
			return err
		}
		defer s.close()

		return fn(ctx, command, s)
	}
}

func requireArg(command *cli.Command, name string) (string, error) {
	value := command.Args().First()
	if value == "" {
		return "", fmt.Errorf("%s: missing <%s> argument", command.FullName(), name)
	}

	return value, nil
}
