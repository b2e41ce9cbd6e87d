// Package persistencetest holds the behaviour every persistence backend must share.
package persistencetest

import (
	"testing"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty backend for one subtest.
type Factory func(t *testing.T) persistence.Persistence

// Run exercises the workflow and execution repositories of the backend built by newPersistence.
func Run(t *testing.T, newPersistence Factory) {
	t.Helper()

	t.Run("HealthCheck", func(t *testing.T) {
		p := newPersistence(t)

		assert.NoError(t, p.HealthCheck(t.Context()))
	})

	t.Run("SaveAndRetrieveWorkflow", func(t *testing.T) {
		repo := newPersistence(t).WorkflowRepository()
		workflow := NewWorkflow(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))

		require.NoError(t, repo.Save(t.Context(), workflow))

		retrieved, err := repo.GetByID(t.Context(), workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)

		assert.Equal(t, workflow.ID, retrieved.ID)
		assert.Equal(t, workflow.Name, retrieved.Name)
		assert.Equal(t, workflow.Description, retrieved.Description)
		assert.Equal(t, workflow.Status, retrieved.Status)
		assert.Equal(t, workflow.Steps, retrieved.Steps)
		assert.True(t, workflow.CreatedAt.Equal(retrieved.CreatedAt.Time))
		assert.Nil(t, retrieved.LastExecutedAt)

		notFound, err := repo.GetByID(t.Context(), models.ID(uuid.NewString()))
		require.NoError(t, err)
		assert.Nil(t, notFound)
	})

	t.Run("UpdateReplacesSteps", func(t *testing.T) {
		repo := newPersistence(t).WorkflowRepository()
		workflow := NewWorkflow(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))

		require.NoError(t, repo.Save(t.Context(), workflow))

		workflow.Name = "Updated"
		workflow.Status = models.WorkflowStatusPaused
		workflow.Steps = workflow.Steps[1:]
		workflow.Steps[0].StepOrder = 1
		workflow.LastExecutedAt = models.NewTimestamp(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))

		require.NoError(t, repo.Save(t.Context(), workflow))

		retrieved, err := repo.GetByID(t.Context(), workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)

		assert.Equal(t, "Updated", retrieved.Name)
		assert.Equal(t, models.WorkflowStatusPaused, retrieved.Status)
		require.Len(t, retrieved.Steps, 1)
		assert.Equal(t, "notify ops", retrieved.Steps[0].Name)
		assert.Equal(t, 1, retrieved.Steps[0].StepOrder)
		require.NotNil(t, retrieved.LastExecutedAt)
		assert.True(t, workflow.LastExecutedAt.Equal(retrieved.LastExecutedAt.Time))
	})

	t.Run("TouchLastExecutedChangesOnlyTheStamp", func(t *testing.T) {
		repo := newPersistence(t).WorkflowRepository()
		workflow := testutil.CreateTestWorkflow(
			testutil.WithCreatedAt(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)),
			testutil.WithWorkflowName("Renamed by user"),
			testutil.WithWorkflowStatus(models.WorkflowStatusPaused),
			testutil.WithSteps(testutil.CreateTestStep(1, testutil.WithStepName("only step"))),
		)

		require.NoError(t, repo.Save(t.Context(), workflow))

		executed := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
		require.NoError(t, repo.TouchLastExecuted(t.Context(), workflow.ID, executed))
		require.NoError(t, repo.TouchLastExecuted(t.Context(), workflow.ID, executed.Add(-time.Hour)))

		retrieved, err := repo.GetByID(t.Context(), workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)

		assert.Equal(t, "Renamed by user", retrieved.Name)
		assert.Equal(t, models.WorkflowStatusPaused, retrieved.Status)
		require.Len(t, retrieved.Steps, 1)
		assert.Equal(t, "only step", retrieved.Steps[0].Name)
		assert.True(t, workflow.UpdatedAt.Equal(retrieved.UpdatedAt.Time))
		require.NotNil(t, retrieved.LastExecutedAt)
		assert.True(t, retrieved.LastExecutedAt.Equal(executed))

		err = repo.TouchLastExecuted(t.Context(), models.ID(uuid.NewString()), executed)
		require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	})

	t.Run("SaveKeepsLaterLastExecuted", func(t *testing.T) {
		repo := newPersistence(t).WorkflowRepository()
		workflow := NewWorkflow(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))

		require.NoError(t, repo.Save(t.Context(), workflow))

		executed := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
		require.NoError(t, repo.TouchLastExecuted(t.Context(), workflow.ID, executed))

		stale := testutil.CreateTestWorkflow(
			testutil.WithCreatedAt(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)),
			testutil.WithWorkflowName("Edited from a stale copy"),
		)
		stale.ID = workflow.ID
		require.NoError(t, repo.Save(t.Context(), stale))

		retrieved, err := repo.GetByID(t.Context(), workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, "Edited from a stale copy", retrieved.Name)
		require.NotNil(t, retrieved.LastExecutedAt)
		assert.True(t, retrieved.LastExecutedAt.Equal(executed))
	})

	t.Run("GetAllOldestFirst", func(t *testing.T) {
		repo := newPersistence(t).WorkflowRepository()
		base := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

		later := NewWorkflow(base.Add(time.Hour))
		earlier := NewWorkflow(base)

		require.NoError(t, repo.Save(t.Context(), later))
		require.NoError(t, repo.Save(t.Context(), earlier))

		workflows, err := repo.GetAll(t.Context())
		require.NoError(t, err)
		require.Len(t, workflows, 2)

		assert.Equal(t, earlier.ID, workflows[0].ID)
		assert.Equal(t, later.ID, workflows[1].ID)
		assert.Len(t, workflows[0].Steps, 2)
	})

	t.Run("DeleteWorkflow", func(t *testing.T) {
		repo := newPersistence(t).WorkflowRepository()
		workflow := NewWorkflow(time.Now())

		require.NoError(t, repo.Save(t.Context(), workflow))
		require.NoError(t, repo.Delete(t.Context(), workflow.ID))

		deleted, err := repo.GetByID(t.Context(), workflow.ID)
		require.NoError(t, err)
		assert.Nil(t, deleted)

		assert.NoError(t, repo.Delete(t.Context(), models.ID(uuid.NewString())))
	})

	t.Run("ExecutionsMostRecentFirst", func(t *testing.T) {
		repo := newPersistence(t).ExecutionRepository()
		workflowID := models.ID(uuid.NewString())
		base := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

		first := NewExecution(workflowID, base)
		second := NewExecution(workflowID, base.Add(time.Minute))
		unrelated := NewExecution(models.ID(uuid.NewString()), base)

		for _, execution := range []*models.Execution{first, second, unrelated} {
			require.NoError(t, repo.Save(t.Context(), execution))
		}

		executions, err := repo.ListByWorkflow(t.Context(), workflowID)
		require.NoError(t, err)
		require.Len(t, executions, 2)
		assert.Equal(t, second.ID, executions[0].ID)
		assert.Equal(t, first.ID, executions[1].ID)

		none, err := repo.ListByWorkflow(t.Context(), models.ID(uuid.NewString()))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("CompleteExecution", func(t *testing.T) {
		repo := newPersistence(t).ExecutionRepository()
		started := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
		execution := NewExecution(models.ID(uuid.NewString()), started)

		require.NoError(t, repo.Save(t.Context(), execution))

		running, err := repo.GetByID(t.Context(), execution.ID)
		require.NoError(t, err)
		require.NotNil(t, running)
		assert.Nil(t, running.CompletedAt)
		assert.Nil(t, running.ExecutionTimeMs)
		assert.Equal(t, `{"invoice":42}`, running.InputData)

		execution.Complete(models.ExecutionStatusCompleted, started.Add(2*time.Second))
		execution.OutputData = `{"ok":true}`
		require.NoError(t, repo.Save(t.Context(), execution))

		completed, err := repo.GetByID(t.Context(), execution.ID)
		require.NoError(t, err)
		require.NotNil(t, completed)
		assert.Equal(t, models.ExecutionStatusCompleted, completed.Status)
		require.NotNil(t, completed.ExecutionTimeMs)
		assert.Equal(t, int64(2000), *completed.ExecutionTimeMs)
		require.NotNil(t, completed.CompletedAt)
		assert.Equal(t, `{"ok":true}`, completed.OutputData)

		missing, err := repo.GetByID(t.Context(), models.ID(uuid.NewString()))
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("DeleteExecutionsByWorkflow", func(t *testing.T) {
		repo := newPersistence(t).ExecutionRepository()
		workflowID := models.ID(uuid.NewString())
		kept := NewExecution(models.ID(uuid.NewString()), time.Now())

		require.NoError(t, repo.Save(t.Context(), NewExecution(workflowID, time.Now())))
		require.NoError(t, repo.Save(t.Context(), kept))

		require.NoError(t, repo.DeleteByWorkflow(t.Context(), workflowID))

		executions, err := repo.ListByWorkflow(t.Context(), workflowID)
		require.NoError(t, err)
		assert.Empty(t, executions)

		stillThere, err := repo.GetByID(t.Context(), kept.ID)
		require.NoError(t, err)
		assert.NotNil(t, stillThere)
	})
}

// NewWorkflow returns an ACTIVE two-step workflow created at created.
func NewWorkflow(created time.Time) *models.Workflow {
	return testutil.CreateTestWorkflow(testutil.WithCreatedAt(created))
}

// NewExecution returns a RUNNING execution started at startedAt.
func NewExecution(workflowID models.ID, startedAt time.Time) *models.Execution {
	return testutil.CreateTestExecution(workflowID, testutil.WithStartedAt(startedAt))
}
