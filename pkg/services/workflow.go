package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/google/uuid"
)

type Workflow struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence: persistence,
		logger:      logger.With("module", "workflow-service"),
		now:         time.Now,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every workflow, oldest first.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id models.ID) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("FetchByID", string(id), ErrWorkflowNotFound)
	}

	return workflow, nil
}

// Create stores a new workflow built from payload. Any id in the payload is ignored.
func (w *Workflow) Create(ctx context.Context, payload models.WorkflowPayload) (*models.Workflow, error) {
	workflow := payload.Workflow()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workflow ID: %w", err)
	}

	workflow.ID = models.ID(id.String())

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	if err := w.prepare(workflow, nil); err != nil {
		return nil, err
	}

	now := models.NewTimestamp(w.now())
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow created", "workflow_id", workflow.ID, "steps", len(workflow.Steps))

	return workflow, nil
}

// Update replaces name, description, status and steps of an existing workflow.
// Creation time, last execution time and step results recorded by the runner are kept.
func (w *Workflow) Update(ctx context.Context, workflowID models.ID, payload models.WorkflowPayload) (*models.Workflow, error) {
	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow := payload.Workflow()
	workflow.ID = workflowID

	if workflow.Status == "" {
		workflow.Status = existing.Status
	}

	if err := w.prepare(workflow, existing); err != nil {
		return nil, err
	}

	workflow.CreatedAt = existing.CreatedAt
	workflow.LastExecutedAt = existing.LastExecutedAt
	workflow.UpdatedAt = models.NewTimestamp(w.now())

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow updated", "workflow_id", workflow.ID, "steps", len(workflow.Steps))

	return workflow, nil
}

// Delete removes a workflow and its execution history.
func (w *Workflow) Delete(ctx context.Context, workflowID models.ID) error {
	if _, err := w.FetchByID(ctx, workflowID); err != nil {
		return err
	}

	err := w.persistence.ExecutionRepository().DeleteByWorkflow(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow executions: %w", err)
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", workflowID)

	return nil
}

// RecordExecution stamps lastExecutedAt on the workflow without rewriting the rest of it,
// so a concurrent Update is never reverted.
func (w *Workflow) RecordExecution(ctx context.Context, workflowID models.ID, at time.Time) error {
	if err := w.persistence.WorkflowRepository().TouchLastExecuted(ctx, workflowID, at); err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return err
		}

		return fmt.Errorf("failed to record execution on workflow: %w", err)
	}

	return nil
}

// prepare fills service-owned step fields, orders steps and validates the result.
func (w *Workflow) prepare(workflow, existing *models.Workflow) error {
	results := map[models.ID]string{}

	if existing != nil {
		for _, step := range existing.Steps {
			results[step.ID] = step.Result
		}
	}

	for i := range workflow.Steps {
		step := &workflow.Steps[i]

		if step.ID.IsZero() {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate step ID: %w", err)
			}

			step.ID = models.ID(id.String())
		}

		if step.Status == "" {
			step.Status = models.StepStatusPending
		}

		step.Result = results[step.ID]
	}

	workflow.Normalize()

	if err := workflow.ValidateForSave(); err != nil {
		return err
	}

	return workflow.ValidateEnums()
}
