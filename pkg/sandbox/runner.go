// Package sandbox closes executions accepted by the sandbox API.
// It performs no step semantics: every run completes with an echo of its input.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowsuite/pkg/eventbus"
	"github.com/dukex/flowsuite/pkg/events"
	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/otelhelper"
	"github.com/dukex/flowsuite/pkg/services"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const workflowNotFoundMessage = "workflow not found"

type Runner struct {
	bus        eventbus.EventBus
	workflows  *services.Workflow
	executions *services.Execution
	logger     *slog.Logger
	tracer     trace.Tracer
	delay      time.Duration
	now        func() time.Time
}

// NewRunner creates a runner that waits delay before closing each execution.
func NewRunner(
	bus eventbus.EventBus,
	workflows *services.Workflow,
	executions *services.Execution,
	logger *slog.Logger,
	delay time.Duration,
) *Runner {
	return &Runner{
		bus:        bus,
		workflows:  workflows,
		executions: executions,
		logger:     logger.With("module", "sandbox-runner"),
		tracer:     otel.Tracer("github.com/dukex/flowsuite/pkg/sandbox"),
		delay:      delay,
		now:        time.Now,
	}
}

// Start registers the runner on the bus and begins consuming. It does not block.
func (r *Runner) Start(ctx context.Context) error {
	err := r.bus.Handle(events.ExecutionAcceptedEvent, r.handleExecutionAccepted)
	if err != nil {
		return err
	}

	err = r.bus.Subscribe(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	r.logger.InfoContext(ctx, "Runner started", "delay", r.delay)

	return nil
}

func (r *Runner) handleExecutionAccepted(ctx context.Context, event any) error {
	accepted, ok := event.(*events.ExecutionAccepted)
	if !ok {
		r.logger.ErrorContext(ctx, "Invalid event type for ExecutionAccepted")

		return nil
	}

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "sandbox.run_execution",
		attribute.String(otelhelper.WorkflowIDKey, string(accepted.WorkflowID)),
		attribute.String(otelhelper.ExecutionIDKey, string(accepted.ExecutionID)),
		attribute.String(otelhelper.EventIDKey, accepted.ID),
	)
	defer span.End()

	err := r.run(ctx, accepted)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return err
}

func (r *Runner) run(ctx context.Context, accepted *events.ExecutionAccepted) error {
	logger := r.logger.With(
		"workflow_id", accepted.WorkflowID,
		"execution_id", accepted.ExecutionID,
		"event_id", accepted.ID,
	)
	logger.InfoContext(ctx, "Processing execution accepted event")

	if r.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}

	workflow, err := r.workflows.FetchByID(ctx, accepted.WorkflowID)
	if err != nil {
		if !services.IsNotFoundError(err) {
			return err
		}

		logger.WarnContext(ctx, "Workflow disappeared before its execution ran")

		return r.fail(ctx, logger, accepted, workflowNotFoundMessage)
	}

	output, err := echoOutput(workflow, accepted.InputData)
	if err != nil {
		return r.fail(ctx, logger, accepted, err.Error())
	}

	execution, err := r.executions.Finish(ctx, accepted.ExecutionID, services.Outcome{
		Status:     models.ExecutionStatusCompleted,
		OutputData: output,
	})
	if err != nil {
		return r.ignoreClosed(ctx, logger, err)
	}

	err = r.workflows.RecordExecution(ctx, workflow.ID, execution.CompletedAt.Time)
	if err != nil && !services.IsNotFoundError(err) {
		logger.ErrorContext(ctx, "Failed to record execution on workflow", "error", err)
	}

	completed := events.ExecutionCompleted{
		BaseEvent: events.NewBaseEvent(r.bus.GenerateID(), events.ExecutionCompletedEvent, execution),
	}

	if ms := execution.ExecutionTimeMs; ms != nil {
		completed.ExecutionTimeMs = *ms
	}

	if err := r.bus.Publish(ctx, string(execution.WorkflowID), completed); err != nil {
		logger.ErrorContext(ctx, "Failed to publish execution completed event", "error", err)
	}

	logger.InfoContext(ctx, "Execution completed", "execution_time_ms", completed.ExecutionTimeMs)

	return nil
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, accepted *events.ExecutionAccepted, message string) error {
	execution, err := r.executions.Finish(ctx, accepted.ExecutionID, services.Outcome{
		Status:       models.ExecutionStatusFailed,
		ErrorMessage: message,
	})
	if err != nil {
		return r.ignoreClosed(ctx, logger, err)
	}

	failed := events.ExecutionFailed{
		BaseEvent: events.NewBaseEvent(r.bus.GenerateID(), events.ExecutionFailedEvent, execution),
		Error:     message,
	}

	if err := r.bus.Publish(ctx, string(execution.WorkflowID), failed); err != nil {
		logger.ErrorContext(ctx, "Failed to publish execution failed event", "error", err)
	}

	logger.InfoContext(ctx, "Execution failed", "error_message", message)

	return nil
}

// ignoreClosed drops redelivered events for executions that are already closed or gone.
func (r *Runner) ignoreClosed(ctx context.Context, logger *slog.Logger, err error) error {
	if services.IsConflictError(err) || services.IsNotFoundError(err) {
		logger.WarnContext(ctx, "Skipping execution that cannot be closed", "error", err)

		return nil
	}

	return err
}

func echoOutput(workflow *models.Workflow, inputData string) (string, error) {
	input := models.EmptyObject()

	if inputData != "" {
		parsed, err := models.ParseJSON(inputData)
		if err != nil {
			return "", fmt.Errorf("execution input is not valid JSON: %w", err)
		}

		input = parsed
	}

	steps := make([]string, len(workflow.Steps))
	for i, step := range workflow.Steps {
		steps[i] = step.Name
	}

	return models.MustJSON(map[string]any{
		"workflowId": workflow.ID,
		"steps":      steps,
		"input":      input,
	}).String(), nil
}
