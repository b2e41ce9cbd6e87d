package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
)

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, dialect: dialect, logger: logger}
}

const selectExecution = `
	SELECT
		id
	  , workflow_id
	  , status
	  , started_at
	  , completed_at
	  , execution_time_ms
	  , input_data
	  , output_data
	  , error_message
	FROM workflow_executions
`

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	query := `
		INSERT INTO workflow_executions (id, workflow_id, status, started_at, completed_at, execution_time_ms, input_data, output_data, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			execution_time_ms = EXCLUDED.execution_time_ms,
			output_data = EXCLUDED.output_data,
			error_message = EXCLUDED.error_message
	`

	var elapsed sql.NullInt64
	if execution.ExecutionTimeMs != nil {
		elapsed = sql.NullInt64{Int64: *execution.ExecutionTimeMs, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		string(execution.ID),
		string(execution.WorkflowID),
		string(execution.Status),
		toMillis(execution.StartedAt),
		toMillis(execution.CompletedAt),
		elapsed,
		execution.InputData,
		execution.OutputData,
		execution.ErrorMessage,
	)
	if err != nil {
		return &persistence.ExecutionError{Op: "Save", ExecutionID: string(execution.ID), Err: err}
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id models.ID) (*models.Execution, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectExecution+" WHERE id = $1"), string(id))

	execution, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, &persistence.ExecutionError{Op: "GetByID", ExecutionID: string(id), Err: err}
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID models.ID) ([]*models.Execution, error) {
	rows, err := r.db.QueryContext(ctx,
		r.dialect.Rebind(selectExecution+" WHERE workflow_id = $1 ORDER BY started_at DESC, id DESC"),
		string(workflowID))
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "ListByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func (r *ExecutionRepository) DeleteByWorkflow(ctx context.Context, workflowID models.ID) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind("DELETE FROM workflow_executions WHERE workflow_id = $1"), string(workflowID))
	if err != nil {
		return &persistence.ExecutionError{Op: "DeleteByWorkflow", WorkflowID: string(workflowID), Err: err}
	}

	return nil
}

func scanExecution(row scanner) (*models.Execution, error) {
	var (
		execution                       models.Execution
		id, workflowID, status          string
		startedAt, completedAt, elapsed sql.NullInt64
	)

	err := row.Scan(&id, &workflowID, &status, &startedAt, &completedAt, &elapsed,
		&execution.InputData, &execution.OutputData, &execution.ErrorMessage)
	if err != nil {
		return nil, err
	}

	execution.ID = models.ID(id)
	execution.WorkflowID = models.ID(workflowID)
	execution.Status = models.ExecutionStatus(status)
	execution.StartedAt = fromMillis(startedAt)
	execution.CompletedAt = fromMillis(completedAt)

	if elapsed.Valid {
		execution.ExecutionTimeMs = &elapsed.Int64
	}

	return &execution, nil
}

func toMillis(t *models.Timestamp) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(value sql.NullInt64) *models.Timestamp {
	if !value.Valid {
		return nil
	}

	return models.NewTimestamp(time.UnixMilli(value.Int64))
}
