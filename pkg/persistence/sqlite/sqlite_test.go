package sqlite_test

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/persistence/persistencetest"
	"github.com/dukex/flowsuite/pkg/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPersistence(t *testing.T, databaseURL string) *sqlite.Persistence {
	t.Helper()

	p, err := sqlite.NewPersistence(t.Context(), slog.New(slog.DiscardHandler), databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, p.Close(t.Context()))
	})

	return p
}

func TestPersistence_Conformance(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.Persistence {
		return newPersistence(t, "sqlite://:memory:")
	})
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	databaseURL := "sqlite://" + filepath.Join(t.TempDir(), "flowsuite.db")
	workflow := persistencetest.NewWorkflow(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))

	first, err := sqlite.NewPersistence(t.Context(), slog.New(slog.DiscardHandler), databaseURL)
	require.NoError(t, err)
	require.NoError(t, first.WorkflowRepository().Save(t.Context(), workflow))
	require.NoError(t, first.Close(t.Context()))

	second := newPersistence(t, databaseURL)

	loaded, err := second.WorkflowRepository().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Steps, 2)
}

func TestPersistence_DeleteCascadesSteps(t *testing.T) {
	p := newPersistence(t, "sqlite://:memory:")
	workflow := persistencetest.NewWorkflow(time.Now())

	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))
	require.NoError(t, p.WorkflowRepository().Delete(t.Context(), workflow.ID))

	// Saving again under the same id must not collide with orphaned step rows.
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	loaded, err := p.WorkflowRepository().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Steps, 2)
}

func TestNewPersistence_EmptyPath(t *testing.T) {
	_, err := sqlite.NewPersistence(t.Context(), slog.New(slog.DiscardHandler), "sqlite://")

	assert.ErrorIs(t, err, persistence.ErrUnsupportedScheme)
}
