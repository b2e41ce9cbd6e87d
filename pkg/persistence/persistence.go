// Package persistence provides the storage abstraction used by the sandbox for workflows and executions.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
)

// Persistence groups the repositories of one storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflows together with their ordered steps.
type WorkflowRepository interface {
	// GetAll returns every workflow ordered by creation time, oldest first.
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// GetByID returns nil, nil when no workflow has the given id.
	GetByID(ctx context.Context, id models.ID) (*models.Workflow, error)
	// Save inserts or replaces the workflow, including all its steps.
	// LastExecutedAt never moves backwards: an older or missing value keeps the stored one.
	Save(ctx context.Context, workflow *models.Workflow) error
	// TouchLastExecuted advances LastExecutedAt to at without touching any other field.
	// It returns ErrWorkflowNotFound when no workflow has the given id.
	TouchLastExecuted(ctx context.Context, id models.ID, at time.Time) error
	// Delete removes the workflow. Deleting a missing workflow is not an error.
	Delete(ctx context.Context, id models.ID) error
}

// ExecutionRepository stores execution records.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	// GetByID returns nil, nil when no execution has the given id.
	GetByID(ctx context.Context, id models.ID) (*models.Execution, error)
	// ListByWorkflow returns the executions of a workflow, most recently started first.
	ListByWorkflow(ctx context.Context, workflowID models.ID) ([]*models.Execution, error)
	DeleteByWorkflow(ctx context.Context, workflowID models.ID) error
}
