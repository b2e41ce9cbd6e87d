package file

import (
	"cmp"
	"context"
	"slices"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
)

const executionsCollection = "executions"

// ExecutionRepository handles execution-related file operations.
type ExecutionRepository struct {
	store *Persistence
}

func (er *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	er.store.mu.Lock()
	defer er.store.mu.Unlock()

	if err := er.store.write(executionsCollection, execution.ID, execution); err != nil {
		return &persistence.ExecutionError{Op: "Save", ExecutionID: string(execution.ID), Err: err}
	}

	return nil
}

func (er *ExecutionRepository) GetByID(_ context.Context, id models.ID) (*models.Execution, error) {
	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	var execution models.Execution

	found, err := er.store.read(executionsCollection, id, &execution)
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "GetByID", ExecutionID: string(id), Err: err}
	}

	if !found {
		return nil, nil
	}

	return &execution, nil
}

// ListByWorkflow scans every execution file; the sandbox keeps few of them.
func (er *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID models.ID) ([]*models.Execution, error) {
	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	executions, err := er.byWorkflow(workflowID)
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "ListByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	slices.SortStableFunc(executions, func(a, b *models.Execution) int {
		return cmp.Or(compareTimestamps(b.StartedAt, a.StartedAt), cmp.Compare(b.ID, a.ID))
	})

	return executions, nil
}

func (er *ExecutionRepository) DeleteByWorkflow(_ context.Context, workflowID models.ID) error {
	er.store.mu.Lock()
	defer er.store.mu.Unlock()

	executions, err := er.byWorkflow(workflowID)
	if err != nil {
		return &persistence.ExecutionError{Op: "DeleteByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	for _, execution := range executions {
		if err := er.store.remove(executionsCollection, execution.ID); err != nil {
			return &persistence.ExecutionError{Op: "DeleteByWorkflow", ExecutionID: string(execution.ID), Err: err}
		}
	}

	return nil
}

func (er *ExecutionRepository) byWorkflow(workflowID models.ID) ([]*models.Execution, error) {
	ids, err := er.store.ids(executionsCollection)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0)

	for _, id := range ids {
		var execution models.Execution

		found, err := er.store.read(executionsCollection, id, &execution)
		if err != nil {
			return nil, err
		}

		if found && execution.WorkflowID == workflowID {
			executions = append(executions, &execution)
		}
	}

	return executions, nil
}
