// Package redis provides a Redis persistence implementation for workflows and executions.
//
// Key layout, relative to the configured prefix:
//
//	workflow:<id>                 => JSON workflow
//	idx:workflows                 => ZSET of workflow ids scored by creation time
//	execution:<id>                => JSON execution
//	idx:executions:<workflowId>   => ZSET of execution ids scored by start time
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the sandbox.
const DefaultPrefix = "flowsuite:"

const maxWatchRetries = 10

var errWatchRetries = errors.New("optimistic transaction retries exhausted")

// Persistence implements the persistence layer on Redis.
type Persistence struct {
	client        *redis.Client
	logger        *slog.Logger
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to the server named by databaseURL, e.g. redis://localhost:6379/0.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	options, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewPersistenceWithClient(client, DefaultPrefix, logger), nil
}

// NewPersistenceWithClient wraps an existing client; prefix defaults to DefaultPrefix.
func NewPersistenceWithClient(client *redis.Client, prefix string, logger *slog.Logger) *Persistence {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	keys := keyspace(prefix)

	return &Persistence{
		client:        client,
		logger:        logger,
		workflowRepo:  &WorkflowRepository{client: client, keys: keys},
		executionRepo: &ExecutionRepository{client: client, keys: keys},
	}
}

func (p *Persistence) Close(_ context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

type keyspace string

func (k keyspace) workflow(id models.ID) string {
	return string(k) + "workflow:" + string(id)
}

func (k keyspace) workflows() string {
	return string(k) + "idx:workflows"
}

func (k keyspace) execution(id models.ID) string {
	return string(k) + "execution:" + string(id)
}

func (k keyspace) executions(workflowID models.ID) string {
	return string(k) + "idx:executions:" + string(workflowID)
}

func score(t *models.Timestamp) float64 {
	if t == nil {
		return 0
	}

	return float64(t.UnixMilli())
}

// loadAll fetches the JSON documents for ids in one pipeline, skipping ids whose key vanished.
func loadAll[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	pipe := client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))

	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	items := make([]*T, 0, len(keys))

	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}

			return nil, err
		}

		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", cmd.Args()[1], err)
		}

		items = append(items, &item)
	}

	return items, nil
}

func loadOne[T any](ctx context.Context, client redis.StringCmdable, key string) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return &item, nil
}

// watch runs fn in a WATCH transaction on key, retrying while another client changes the key.
func watch(ctx context.Context, client *redis.Client, key string, fn func(tx *redis.Tx) error) error {
	for range maxWatchRetries {
		err := client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return errWatchRetries
}
