package redis

import (
	"context"
	"encoding/json"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// ExecutionRepository stores executions as JSON documents indexed per workflow.
type ExecutionRepository struct {
	client *redis.Client
	keys   keyspace
}

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return &persistence.ExecutionError{Op: "Save", ExecutionID: string(execution.ID), Err: err}
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.keys.execution(execution.ID), data, 0)
	pipe.ZAdd(ctx, r.keys.executions(execution.WorkflowID), redis.Z{Score: score(execution.StartedAt), Member: string(execution.ID)})

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.ExecutionError{Op: "Save", ExecutionID: string(execution.ID), Err: err}
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id models.ID) (*models.Execution, error) {
	execution, err := loadOne[models.Execution](ctx, r.client, r.keys.execution(id))
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "GetByID", ExecutionID: string(id), Err: err}
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID models.ID) ([]*models.Execution, error) {
	ids, err := r.client.ZRevRange(ctx, r.keys.executions(workflowID), 0, -1).Result()
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "ListByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	executions, err := loadAll[models.Execution](ctx, r.client, r.executionKeys(ids))
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "ListByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	return executions, nil
}

func (r *ExecutionRepository) DeleteByWorkflow(ctx context.Context, workflowID models.ID) error {
	index := r.keys.executions(workflowID)

	ids, err := r.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return &persistence.ExecutionError{Op: "DeleteByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	keys := append(r.executionKeys(ids), index)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return &persistence.ExecutionError{Op: "DeleteByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	return nil
}

func (r *ExecutionRepository) executionKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.execution(models.ID(id))
	}

	return keys
}
