package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowsuite/pkg/eventbus"
	"github.com/dukex/flowsuite/pkg/events"
	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/google/uuid"
)

// Execution records execution requests and hands them to the runner through the event bus.
type Execution struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	workflows   *Workflow
	logger      *slog.Logger
	now         func() time.Time
}

// NewExecution creates a new execution service.
func NewExecution(persistence persistence.Persistence, publisher eventbus.EventPublisher, workflows *Workflow, logger *slog.Logger) *Execution {
	return &Execution{
		persistence: persistence,
		publisher:   publisher,
		workflows:   workflows,
		logger:      logger.With("module", "execution-service"),
		now:         time.Now,
	}
}

// Execute records a RUNNING execution for the workflow and publishes execution.accepted.
// The returned execution is an acknowledgement; the runner closes it later.
func (e *Execution) Execute(ctx context.Context, workflowID models.ID, input models.JSON) (*models.Execution, error) {
	if _, err := e.workflows.FetchByID(ctx, workflowID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate execution ID: %w", err)
	}

	if input.IsZero() {
		input = models.EmptyObject()
	}

	execution := &models.Execution{
		ID:         models.ID(id.String()),
		WorkflowID: workflowID,
		Status:     models.ExecutionStatusRunning,
		StartedAt:  models.NewTimestamp(e.now()),
		InputData:  input.String(),
	}

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to record execution: %w", err)
	}

	event := events.ExecutionAccepted{
		BaseEvent: events.NewBaseEvent(uuid.NewString(), events.ExecutionAcceptedEvent, execution),
		InputData: execution.InputData,
	}

	if err := e.publisher.Publish(ctx, string(workflowID), event); err != nil {
		execution.Complete(models.ExecutionStatusFailed, e.now())
		execution.ErrorMessage = "execution could not be dispatched: " + err.Error()

		if saveErr := e.persistence.ExecutionRepository().Save(ctx, execution); saveErr != nil {
			e.logger.ErrorContext(ctx, "Failed to mark undispatched execution as failed", "execution_id", execution.ID, "error", saveErr)
		}

		return nil, fmt.Errorf("failed to dispatch execution: %w", err)
	}

	e.logger.InfoContext(ctx, "Execution accepted", "workflow_id", workflowID, "execution_id", execution.ID)

	return execution, nil
}

// ListByWorkflow returns the executions of an existing workflow, most recent first.
func (e *Execution) ListByWorkflow(ctx context.Context, workflowID models.ID) ([]*models.Execution, error) {
	if _, err := e.workflows.FetchByID(ctx, workflowID); err != nil {
		return nil, err
	}

	executions, err := e.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

// FetchByID retrieves an execution by its ID.
func (e *Execution) FetchByID(ctx context.Context, id models.ID) (*models.Execution, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, &persistence.ExecutionError{Op: "FetchByID", ExecutionID: string(id), Err: ErrExecutionNotFound}
	}

	return execution, nil
}

// Outcome is how the runner closes an execution.
type Outcome struct {
	Status       models.ExecutionStatus
	OutputData   string
	ErrorMessage string
}

// Finish moves a RUNNING execution to the terminal status in outcome.
func (e *Execution) Finish(ctx context.Context, id models.ID, outcome Outcome) (*models.Execution, error) {
	if !outcome.Status.Finished() {
		return nil, NewValidationError("Finish", "INVALID_STATUS",
			fmt.Sprintf("%s is not a terminal execution status", outcome.Status), ErrInvalidRequest)
	}

	execution, err := e.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution.Status.Finished() {
		return nil, &ServiceError{Op: "Finish", Code: "EXECUTION_FINISHED", Err: ErrExecutionFinished}
	}

	execution.Complete(outcome.Status, e.now())
	execution.OutputData = outcome.OutputData
	execution.ErrorMessage = outcome.ErrorMessage

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to finish execution: %w", err)
	}

	return execution, nil
}
