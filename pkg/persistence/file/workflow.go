package file

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
)

const workflowsCollection = "workflows"

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	store *Persistence
}

// GetAll loads every workflow file, oldest first.
func (wr *WorkflowRepository) GetAll(_ context.Context) ([]*models.Workflow, error) {
	wr.store.mu.RLock()
	defer wr.store.mu.RUnlock()

	ids, err := wr.store.ids(workflowsCollection)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var workflow models.Workflow

		found, err := wr.store.read(workflowsCollection, id, &workflow)
		if err != nil {
			return nil, persistence.NewWorkflowError("GetAll", string(id), err)
		}

		if found {
			workflows = append(workflows, &workflow)
		}
	}

	slices.SortStableFunc(workflows, func(a, b *models.Workflow) int {
		return cmp.Or(compareTimestamps(a.CreatedAt, b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return workflows, nil
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, id models.ID) (*models.Workflow, error) {
	wr.store.mu.RLock()
	defer wr.store.mu.RUnlock()

	var workflow models.Workflow

	found, err := wr.store.read(workflowsCollection, id, &workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", string(id), err)
	}

	if !found {
		return nil, nil
	}

	return &workflow, nil
}

// Save saves a workflow to the file system, keeping a later stored LastExecutedAt.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	var stored models.Workflow

	found, err := wr.store.read(workflowsCollection, workflow.ID, &stored)
	if err != nil {
		return persistence.NewWorkflowError("Save", string(workflow.ID), err)
	}

	document := *workflow
	if found {
		document.LastExecutedAt = models.LaterTimestamp(stored.LastExecutedAt, workflow.LastExecutedAt)
	}

	if err := wr.store.write(workflowsCollection, workflow.ID, &document); err != nil {
		return persistence.NewWorkflowError("Save", string(workflow.ID), err)
	}

	return nil
}

// TouchLastExecuted advances LastExecutedAt under the write lock.
func (wr *WorkflowRepository) TouchLastExecuted(_ context.Context, id models.ID, at time.Time) error {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	var workflow models.Workflow

	found, err := wr.store.read(workflowsCollection, id, &workflow)
	if err != nil {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), err)
	}

	if !found {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), persistence.ErrWorkflowNotFound)
	}

	workflow.LastExecutedAt = models.LaterTimestamp(workflow.LastExecutedAt, models.NewTimestamp(at))

	if err := wr.store.write(workflowsCollection, id, &workflow); err != nil {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), err)
	}

	return nil
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(_ context.Context, id models.ID) error {
	wr.store.mu.Lock()
	defer wr.store.mu.Unlock()

	if err := wr.store.remove(workflowsCollection, id); err != nil {
		return persistence.NewWorkflowError("Delete", string(id), err)
	}

	return nil
}

func compareTimestamps(a, b *models.Timestamp) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(b.Time)
	}
}
