package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// WorkflowRepository stores each workflow as one JSON document.
type WorkflowRepository struct {
	client *redis.Client
	keys   keyspace
}

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := r.client.ZRange(ctx, r.keys.workflows(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow ids: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.workflow(models.ID(id))
	}

	workflows, err := loadAll[models.Workflow](ctx, r.client, keys)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetAll", "", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id models.ID) (*models.Workflow, error) {
	workflow, err := loadOne[models.Workflow](ctx, r.client, r.keys.workflow(id))
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", string(id), err)
	}

	return workflow, nil
}

// Save replaces the document, keeping a later stored LastExecutedAt.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID.IsZero() {
		return persistence.NewWorkflowError("Save", "", persistence.ErrInvalidID)
	}

	key := r.keys.workflow(workflow.ID)

	err := watch(ctx, r.client, key, func(tx *redis.Tx) error {
		stored, err := loadOne[models.Workflow](ctx, tx, key)
		if err != nil {
			return err
		}

		document := *workflow
		if stored != nil {
			document.LastExecutedAt = models.LaterTimestamp(stored.LastExecutedAt, workflow.LastExecutedAt)
		}

		data, err := json.Marshal(&document)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAddNX(ctx, r.keys.workflows(), redis.Z{Score: score(workflow.CreatedAt), Member: string(workflow.ID)})

			return nil
		})

		return err
	})
	if err != nil {
		return persistence.NewWorkflowError("Save", string(workflow.ID), err)
	}

	return nil
}

// TouchLastExecuted advances LastExecutedAt in a WATCH transaction on the document.
func (r *WorkflowRepository) TouchLastExecuted(ctx context.Context, id models.ID, at time.Time) error {
	key := r.keys.workflow(id)

	err := watch(ctx, r.client, key, func(tx *redis.Tx) error {
		workflow, err := loadOne[models.Workflow](ctx, tx, key)
		if err != nil {
			return err
		}

		if workflow == nil {
			return persistence.ErrWorkflowNotFound
		}

		workflow.LastExecutedAt = models.LaterTimestamp(workflow.LastExecutedAt, models.NewTimestamp(at))

		data, err := json.Marshal(workflow)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)

			return nil
		})

		return err
	})
	if err != nil {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id models.ID) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.keys.workflow(id))
	pipe.ZRem(ctx, r.keys.workflows(), string(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewWorkflowError("Delete", string(id), err)
	}

	return nil
}
