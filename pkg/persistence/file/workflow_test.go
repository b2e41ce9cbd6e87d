package file

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkflow(id models.ID, created time.Time) *models.Workflow {
	return &models.Workflow{
		ID:          id,
		Name:        "Invoice triage",
		Description: "classify incoming invoices",
		Status:      models.WorkflowStatusActive,
		Steps: []models.Step{
			{ID: "s1", Name: "classify", StepOrder: 1, Type: models.StepTypeAIProcessing, Status: models.StepStatusPending, AIPrompt: "classify {{invoice}}"},
			{ID: "s2", Name: "notify", StepOrder: 2, Type: models.StepTypeNotification, Status: models.StepStatusPending, Configuration: `{"channel":"ops"}`},
		},
		CreatedAt: models.NewTimestamp(created),
		UpdatedAt: models.NewTimestamp(created),
	}
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	testDir := t.TempDir()
	repo := NewPersistence(testDir).WorkflowRepository()

	workflow := sampleWorkflow("wf-1", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Save(t.Context(), workflow))
	assert.FileExists(t, filepath.Join(testDir, "workflows", "wf-1.json"))

	loaded, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Equal(t, workflow.Steps, loaded.Steps)
	assert.True(t, workflow.CreatedAt.Equal(loaded.CreatedAt.Time))
}

func TestWorkflowRepository_GetByID_Missing(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	workflow, err := repo.GetByID(t.Context(), "nope")

	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestWorkflowRepository_GetAll_OldestFirst(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("b", base.Add(time.Hour))))
	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("a", base.Add(2*time.Hour))))
	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("c", base)))

	workflows, err := repo.GetAll(t.Context())

	require.NoError(t, err)
	require.Len(t, workflows, 3)
	assert.Equal(t, models.ID("c"), workflows[0].ID)
	assert.Equal(t, models.ID("b"), workflows[1].ID)
	assert.Equal(t, models.ID("a"), workflows[2].ID)
}

func TestWorkflowRepository_GetAll_EmptyDirectory(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	workflows, err := repo.GetAll(t.Context())

	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflowRepository_Delete(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-1", time.Now())))
	require.NoError(t, repo.Delete(t.Context(), "wf-1"))
	require.NoError(t, repo.Delete(t.Context(), "wf-1"))

	workflow, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestWorkflowRepository_ConcurrentSaves(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()
	workflow := sampleWorkflow("wf-1", time.Now())

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.NoError(t, repo.Save(t.Context(), workflow.Clone()))
		}()
	}

	wg.Wait()

	loaded, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Invoice triage", loaded.Name)
}
