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

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, dialect: dialect, logger: logger}
}

const selectWorkflow = `
	SELECT
		id
	  , name
	  , description
	  , status
	  , created_at
	  , updated_at
	  , last_executed_at
	FROM workflows
`

// GetAll returns all workflows, oldest first.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, selectWorkflow+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			r.closeRows(ctx, rows)

			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	r.closeRows(ctx, rows)

	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	// Steps are loaded after the cursor is closed; SQLite runs on a single connection.
	for _, workflow := range workflows {
		if err := r.loadSteps(ctx, workflow); err != nil {
			return nil, persistence.NewWorkflowError("GetAll", string(workflow.ID), err)
		}
	}

	return workflows, nil
}

// GetByID returns nil, nil when the workflow does not exist.
func (r *WorkflowRepository) GetByID(ctx context.Context, id models.ID) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectWorkflow+" WHERE id = $1"), string(id))

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", string(id), err)
	}

	if err := r.loadSteps(ctx, workflow); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", string(id), err)
	}

	return workflow, nil
}

// Save upserts the workflow row and replaces its steps in one transaction.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) (err error) {
	if workflow.ID.IsZero() {
		return persistence.NewWorkflowError("Save", "", persistence.ErrInvalidID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	workflowQuery := `
		INSERT INTO workflows (id, name, description, status, created_at, updated_at, last_executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			last_executed_at = CASE
				WHEN workflows.last_executed_at IS NULL OR EXCLUDED.last_executed_at > workflows.last_executed_at
				THEN EXCLUDED.last_executed_at
				ELSE workflows.last_executed_at
			END
	`

	_, err = tx.ExecContext(ctx, r.dialect.Rebind(workflowQuery),
		string(workflow.ID),
		workflow.Name,
		workflow.Description,
		string(workflow.Status),
		toMillis(workflow.CreatedAt),
		toMillis(workflow.UpdatedAt),
		toMillis(workflow.LastExecutedAt),
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", string(workflow.ID), fmt.Errorf("failed to save workflow base: %w", err))
	}

	_, err = tx.ExecContext(ctx, r.dialect.Rebind("DELETE FROM workflow_steps WHERE workflow_id = $1"), string(workflow.ID))
	if err != nil {
		return persistence.NewWorkflowError("Save", string(workflow.ID), fmt.Errorf("failed to delete existing steps: %w", err))
	}

	stepQuery := r.dialect.Rebind(`
		INSERT INTO workflow_steps (workflow_id, position, id, name, step_type, status, ai_prompt, configuration, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)

	for i, step := range workflow.Steps {
		_, err = tx.ExecContext(ctx, stepQuery,
			string(workflow.ID),
			i+1,
			string(step.ID),
			step.Name,
			string(step.Type),
			string(step.Status),
			step.AIPrompt,
			step.Configuration,
			step.Result,
		)
		if err != nil {
			return persistence.NewWorkflowError("Save", string(workflow.ID), fmt.Errorf("failed to save step %d: %w", i+1, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TouchLastExecuted advances last_executed_at in a single statement.
func (r *WorkflowRepository) TouchLastExecuted(ctx context.Context, id models.ID, at time.Time) error {
	query := `
		UPDATE workflows SET last_executed_at = CASE
			WHEN last_executed_at IS NULL OR last_executed_at < $2 THEN $2
			ELSE last_executed_at
		END
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), string(id), toMillis(models.NewTimestamp(at)))
	if err != nil {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("TouchLastExecuted", string(id), persistence.ErrWorkflowNotFound)
	}

	return nil
}

// Delete removes the workflow; its steps go with it through the foreign key.
func (r *WorkflowRepository) Delete(ctx context.Context, id models.ID) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind("DELETE FROM workflows WHERE id = $1"), string(id))
	if err != nil {
		return persistence.NewWorkflowError("Delete", string(id), err)
	}

	return nil
}

func (r *WorkflowRepository) loadSteps(ctx context.Context, workflow *models.Workflow) error {
	query := `
		SELECT position, id, name, step_type, status, ai_prompt, configuration, result
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), string(workflow.ID))
	if err != nil {
		return fmt.Errorf("failed to query workflow steps: %w", err)
	}

	defer r.closeRows(ctx, rows)

	steps := make([]models.Step, 0)

	for rows.Next() {
		var (
			step                 models.Step
			id, stepType, status string
		)

		err := rows.Scan(&step.StepOrder, &id, &step.Name, &stepType, &status, &step.AIPrompt, &step.Configuration, &step.Result)
		if err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}

		step.ID = models.ID(id)
		step.Type = models.StepType(stepType)
		step.Status = models.StepStatus(status)

		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating steps: %w", err)
	}

	workflow.Steps = steps

	return nil
}

func (r *WorkflowRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow                             models.Workflow
		id, status                           string
		createdAt, updatedAt, lastExecutedAt sql.NullInt64
	)

	err := row.Scan(&id, &workflow.Name, &workflow.Description, &status, &createdAt, &updatedAt, &lastExecutedAt)
	if err != nil {
		return nil, err
	}

	workflow.ID = models.ID(id)
	workflow.Status = models.WorkflowStatus(status)
	workflow.CreatedAt = fromMillis(createdAt)
	workflow.UpdatedAt = fromMillis(updatedAt)
	workflow.LastExecutedAt = fromMillis(lastExecutedAt)

	return &workflow, nil
}
