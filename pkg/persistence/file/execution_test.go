package file

import (
	"testing"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionRepository_ListByWorkflow(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []models.ID{"e1", "e2", "e3"} {
		require.NoError(t, repo.Save(t.Context(), &models.Execution{
			ID:         id,
			WorkflowID: "wf-1",
			Status:     models.ExecutionStatusRunning,
			StartedAt:  models.NewTimestamp(base.Add(time.Duration(i) * time.Minute)),
		}))
	}

	require.NoError(t, repo.Save(t.Context(), &models.Execution{ID: "other", WorkflowID: "wf-2", Status: models.ExecutionStatusRunning}))

	executions, err := repo.ListByWorkflow(t.Context(), "wf-1")

	require.NoError(t, err)
	require.Len(t, executions, 3)
	assert.Equal(t, models.ID("e3"), executions[0].ID)
	assert.Equal(t, models.ID("e1"), executions[2].ID)
}

func TestExecutionRepository_SaveUpdatesRecord(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	execution := &models.Execution{ID: "e1", WorkflowID: "wf-1", Status: models.ExecutionStatusRunning, StartedAt: models.NewTimestamp(started)}
	require.NoError(t, repo.Save(t.Context(), execution))

	execution.Complete(models.ExecutionStatusCompleted, started.Add(1500*time.Millisecond))
	require.NoError(t, repo.Save(t.Context(), execution))

	loaded, err := repo.GetByID(t.Context(), "e1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.ExecutionTimeMs)
	assert.Equal(t, int64(1500), *loaded.ExecutionTimeMs)
}

func TestExecutionRepository_DeleteByWorkflow(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()

	require.NoError(t, repo.Save(t.Context(), &models.Execution{ID: "e1", WorkflowID: "wf-1"}))
	require.NoError(t, repo.Save(t.Context(), &models.Execution{ID: "e2", WorkflowID: "wf-2"}))

	require.NoError(t, repo.DeleteByWorkflow(t.Context(), "wf-1"))

	missing, err := repo.GetByID(t.Context(), "e1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	kept, err := repo.GetByID(t.Context(), "e2")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
