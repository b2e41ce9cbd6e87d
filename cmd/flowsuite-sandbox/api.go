package main

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/flowsuite/pkg/eventbus"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/sandbox"
	"github.com/dukex/flowsuite/pkg/services"
	"github.com/dukex/flowsuite/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
)

const shutdownTimeout = 5 * time.Second

type Sandbox struct {
	logger     *slog.Logger
	workflows  *services.Workflow
	executions *services.Execution
	ai         *services.AI
	runner     *sandbox.Runner
	validate   *validator.Validate
}

func NewSandbox(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	executionDelay time.Duration,
) *Sandbox {
	workflows := services.NewWorkflow(persistence, logger)
	executions := services.NewExecution(persistence, eventBus, workflows, logger)

	return &Sandbox{
		logger:     logger,
		workflows:  workflows,
		executions: executions,
		ai:         services.NewAI(logger),
		runner:     sandbox.NewRunner(eventBus, workflows, executions, logger, executionDelay),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Sandbox) App() *fiber.App {
	handlers := web.NewAPIHandlers(s.workflows, s.executions, s.ai, s.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("flowsuite sandbox")
	})

	handlers.Register(app.Group("/api"))

	return app
}

// StartRunner subscribes the execution runner to the event bus.
func (s *Sandbox) StartRunner(ctx context.Context) error {
	return s.runner.Start(ctx)
}

// Serve starts the runner and the HTTP server, and shuts the server down when ctx is done.
func (s *Sandbox) Serve(ctx context.Context, port int) error {
	if err := s.StartRunner(ctx); err != nil {
		return err
	}

	app := s.App()
	errs := make(chan error, 1)

	go func() {
		errs <- app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	s.logger.InfoContext(ctx, "Sandbox listening", "port", port)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down sandbox")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
