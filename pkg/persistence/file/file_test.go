package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	fp := NewPersistence("/tmp/test")
	assert.Equal(t, "/tmp/test", fp.root)

	fp = NewPersistence("file:///tmp/test")
	assert.Equal(t, "/tmp/test", fp.root)
}

func TestPersistence_Close(t *testing.T) {
	fp := NewPersistence("./test-data")
	err := fp.Close(t.Context())
	assert.NoError(t, err)
}

func TestPersistence_HealthCheck(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "data")
	fp := NewPersistence(root)

	require.NoError(t, fp.HealthCheck(t.Context()))
	assert.DirExists(t, root)
}

func TestPersistence_HealthCheck_NotADirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0600))

	fp := NewPersistence(root)

	assert.Error(t, fp.HealthCheck(t.Context()))
}

func TestPersistence_RejectsUnsafeIDs(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	for _, id := range []models.ID{"", ".", "..", "../escape", `a\b`, "a/b"} {
		t.Run(string(id), func(t *testing.T) {
			_, err := fp.WorkflowRepository().GetByID(t.Context(), id)
			assert.True(t, persistence.IsInvalidID(err))

			err = fp.WorkflowRepository().Save(t.Context(), &models.Workflow{ID: id, Name: "x"})
			assert.True(t, persistence.IsInvalidID(err))
		})
	}
}

func TestPersistence_Conformance(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.Persistence {
		return NewPersistence(t.TempDir())
	})
}
