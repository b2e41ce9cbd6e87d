package editor_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/dukex/flowsuite/pkg/client"
	"github.com/dukex/flowsuite/pkg/editor"
	"github.com/dukex/flowsuite/pkg/mocks"
	"github.com/dukex/flowsuite/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEditor(t *testing.T) (*editor.Editor, *mocks.MockWorkflowStore) {
	t.Helper()

	store := &mocks.MockWorkflowStore{}
	t.Cleanup(func() { store.AssertExpectations(t) })

	return editor.New(store, testLogger()), store
}

func TestEditor_Create(t *testing.T) {
	ed, _ := newEditor(t)

	assert.Equal(t, editor.StateEmpty, ed.State())
	assert.Nil(t, ed.Workflow())

	require.NoError(t, ed.Create())

	assert.Equal(t, editor.StateEditing, ed.State())
	workflow := ed.Workflow()
	require.NotNil(t, workflow)
	assert.True(t, workflow.IsNew())
	assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
	assert.Empty(t, workflow.Steps)

	require.ErrorIs(t, ed.Create(), editor.ErrNotEditable)
}

func TestEditor_OperationsRejectedOutsideEditing(t *testing.T) {
	ed, _ := newEditor(t)

	_, err := ed.AddStep()
	require.ErrorIs(t, err, editor.ErrNotEditable)
	require.ErrorIs(t, ed.RemoveStep(0), editor.ErrNotEditable)
	require.ErrorIs(t, ed.UpdateStep(0, models.SetName{Name: "x"}), editor.ErrNotEditable)
	require.ErrorIs(t, ed.UpdateWorkflow(models.SetWorkflowName{Name: "x"}), editor.ErrNotEditable)

	_, err = ed.Commit(t.Context())
	require.ErrorIs(t, err, editor.ErrNotEditable)
}

func TestEditor_Load(t *testing.T) {
	ed, store := newEditor(t)

	stored := &models.Workflow{
		ID:     "12",
		Name:   "Invoices",
		Status: models.WorkflowStatusActive,
		Steps: []models.Step{
			{ID: "2", Name: "second", StepOrder: 2, Type: models.StepTypeNotification, Status: models.StepStatusPending},
			{ID: "1", Name: "first", StepOrder: 1, Type: models.StepTypeAIProcessing, Status: models.StepStatusCompleted},
		},
	}
	store.On("GetWorkflow", mock.Anything, models.ID("12")).Return(stored, nil).Once()

	require.NoError(t, ed.Load(t.Context(), "12"))

	assert.Equal(t, editor.StateEditing, ed.State())
	workflow := ed.Workflow()
	require.Len(t, workflow.Steps, 2)
	assert.Equal(t, "first", workflow.Steps[0].Name)
	assert.Equal(t, 1, workflow.Steps[0].StepOrder)
	assert.Equal(t, "second", workflow.Steps[1].Name)

	// the store's copy is not shared with the session
	assert.Equal(t, "second", stored.Steps[0].Name)
}

func TestEditor_LoadError_Retry(t *testing.T) {
	ed, store := newEditor(t)

	store.On("GetWorkflow", mock.Anything, models.ID("9")).Return(nil, client.ErrNotFound).Once()
	store.On("GetWorkflow", mock.Anything, models.ID("9")).Return(&models.Workflow{ID: "9", Name: "Found", Status: models.WorkflowStatusDraft}, nil).Once()

	err := ed.Load(t.Context(), "9")
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, editor.StateLoadError, ed.State())
	assert.Nil(t, ed.Workflow())
	require.ErrorIs(t, ed.Err(), client.ErrNotFound)

	_, err = ed.AddStep()
	require.ErrorIs(t, err, editor.ErrNotEditable)

	require.NoError(t, ed.Load(t.Context(), "9"))
	assert.Equal(t, editor.StateEditing, ed.State())
	assert.NoError(t, ed.Err())
	assert.Equal(t, "Found", ed.Workflow().Name)
}

func TestEditor_RandomAddRemoveKeepsStepOrder(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 2024} {
		ed, _ := newEditor(t)
		require.NoError(t, ed.Create())

		rng := rand.New(rand.NewPCG(seed, seed*31))
		want := 0

		for call := range 200 {
			if rng.IntN(3) < 2 {
				_, err := ed.AddStep()
				require.NoError(t, err)

				want++
			} else {
				index := rng.IntN(want+2) - 1

				err := ed.RemoveStep(index)
				if index >= 0 && index < want {
					require.NoError(t, err)

					want--
				} else {
					require.ErrorIs(t, err, models.ErrIndexOutOfRange)
				}
			}

			steps := ed.Workflow().Steps
			require.Len(t, steps, want, "seed %d call %d", seed, call)

			for i, step := range steps {
				require.Equal(t, i+1, step.StepOrder, "seed %d call %d", seed, call)
			}
		}
	}
}

func TestEditor_Mutations(t *testing.T) {
	ed, _ := newEditor(t)
	require.NoError(t, ed.Create())

	first, err := ed.AddStep()
	require.NoError(t, err)
	second, err := ed.AddStep()
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	require.NoError(t, ed.UpdateStep(1, models.SetType{Type: models.StepTypeNotification}))
	require.NoError(t, ed.UpdateWorkflow(models.SetWorkflowName{Name: "Alerts"}))

	err = ed.RemoveStep(5)
	require.ErrorIs(t, err, models.ErrIndexOutOfRange)

	workflow := ed.Workflow()
	require.Len(t, workflow.Steps, 2)
	assert.Equal(t, models.StepTypeAIProcessing, workflow.Steps[0].Type)
	assert.Equal(t, models.StepTypeNotification, workflow.Steps[1].Type)
	assert.Equal(t, "Alerts", workflow.Name)

	require.NoError(t, ed.RemoveStep(0))

	workflow = ed.Workflow()
	require.Len(t, workflow.Steps, 1)
	assert.Equal(t, 1, workflow.Steps[0].StepOrder)
	assert.Equal(t, models.StepTypeNotification, workflow.Steps[0].Type)
	assert.Equal(t, editor.StateEditing, ed.State())
}

func TestEditor_Commit_ValidationFailureSkipsStore(t *testing.T) {
	ed, store := newEditor(t)
	require.NoError(t, ed.Create())
	_, err := ed.AddStep()
	require.NoError(t, err)
	require.NoError(t, ed.UpdateStep(0, models.SetName{Name: "only step"}))

	saved, err := ed.Commit(t.Context())

	require.ErrorIs(t, err, models.ErrInvalidWorkflow)
	assert.Nil(t, saved)
	assert.Equal(t, editor.StateSaveError, ed.State())
	store.AssertNotCalled(t, "CreateWorkflow", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateWorkflow", mock.Anything, mock.Anything, mock.Anything)

	workflow := ed.Workflow()
	assert.Empty(t, workflow.Name)
	require.Len(t, workflow.Steps, 1)
	assert.Equal(t, "only step", workflow.Steps[0].Name)
}

func TestEditor_Commit_Create(t *testing.T) {
	ed, store := newEditor(t)
	require.NoError(t, ed.Create())
	require.NoError(t, ed.UpdateWorkflow(models.SetWorkflowName{Name: "Onboarding"}))
	_, err := ed.AddStep()
	require.NoError(t, err)
	require.NoError(t, ed.UpdateStep(0, models.SetName{Name: "welcome"}))

	store.On("CreateWorkflow", mock.Anything, mock.MatchedBy(func(p models.WorkflowPayload) bool {
		return p.ID.IsZero() && p.Name == "Onboarding" && len(p.Steps) == 1 && p.Steps[0].StepOrder == 1
	})).Return(&models.Workflow{
		ID:     "100",
		Name:   "Onboarding",
		Status: models.WorkflowStatusDraft,
		Steps:  []models.Step{{ID: "1", Name: "welcome", StepOrder: 1, Type: models.StepTypeAIProcessing, Status: models.StepStatusPending}},
	}, nil).Once()

	saved, err := ed.Commit(t.Context())

	require.NoError(t, err)
	assert.Equal(t, models.ID("100"), saved.ID)
	assert.Equal(t, editor.StateSaved, ed.State())
	assert.Equal(t, models.ID("100"), ed.Workflow().ID)

	_, err = ed.AddStep()
	require.ErrorIs(t, err, editor.ErrNotEditable)
}

func TestEditor_Commit_UpdateFailureKeepsEdits(t *testing.T) {
	ed, store := newEditor(t)
	store.On("GetWorkflow", mock.Anything, models.ID("5")).Return(&models.Workflow{
		ID:     "5",
		Name:   "Reports",
		Status: models.WorkflowStatusDraft,
		Steps:  []models.Step{{Name: "collect", StepOrder: 1, Type: models.StepTypeAIProcessing, Status: models.StepStatusPending}},
	}, nil).Once()
	require.NoError(t, ed.Load(t.Context(), "5"))
	require.NoError(t, ed.UpdateWorkflow(models.SetWorkflowName{Name: "Weekly reports"}))

	transportErr := &client.TransportError{Op: "UpdateWorkflow", Method: "PUT", Path: "/workflows/5", StatusCode: 500, Message: "boom", Err: client.ErrTransport}
	store.On("UpdateWorkflow", mock.Anything, models.ID("5"), mock.Anything).Return(nil, transportErr).Once()

	_, err := ed.Commit(t.Context())

	require.ErrorIs(t, err, client.ErrTransport)
	assert.Equal(t, editor.StateSaveError, ed.State())
	workflow := ed.Workflow()
	assert.Equal(t, "Weekly reports", workflow.Name)
	require.Len(t, workflow.Steps, 1)
	assert.Equal(t, "collect", workflow.Steps[0].Name)

	// further edits return to Editing while the error stays visible
	require.NoError(t, ed.UpdateStep(0, models.SetPrompt{Prompt: "be brief"}))
	assert.Equal(t, editor.StateEditing, ed.State())
	require.ErrorIs(t, ed.Err(), client.ErrTransport)

	store.On("UpdateWorkflow", mock.Anything, models.ID("5"), mock.MatchedBy(func(p models.WorkflowPayload) bool {
		return p.Steps[0].AIPrompt == "be brief"
	})).Return(&models.Workflow{ID: "5", Name: "Weekly reports", Status: models.WorkflowStatusDraft}, nil).Once()

	_, err = ed.Commit(t.Context())
	require.NoError(t, err)
	assert.Equal(t, editor.StateSaved, ed.State())
	assert.NoError(t, ed.Err())
}

func TestEditor_Commit_LogsWithModule(t *testing.T) {
	var buf bytes.Buffer

	store := &mocks.MockWorkflowStore{}
	t.Cleanup(func() { store.AssertExpectations(t) })

	ed := editor.New(store, slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, ed.Create())
	require.NoError(t, ed.UpdateWorkflow(models.SetWorkflowName{Name: "Logged"}))

	store.On("CreateWorkflow", mock.Anything, mock.Anything).Return(&models.Workflow{ID: "7", Name: "Logged", Status: models.WorkflowStatusDraft}, nil).Once()

	_, err := ed.Commit(t.Context())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"module":"editor"`)
	assert.Contains(t, buf.String(), `"msg":"Workflow committed"`)
}

func TestEditor_Commit_RetryFromSaveError(t *testing.T) {
	ed, store := newEditor(t)
	require.NoError(t, ed.Create())
	require.NoError(t, ed.UpdateWorkflow(models.SetWorkflowName{Name: "Retry"}))

	store.On("CreateWorkflow", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()
	store.On("CreateWorkflow", mock.Anything, mock.Anything).Return(&models.Workflow{ID: "1", Name: "Retry", Status: models.WorkflowStatusDraft}, nil).Once()

	_, err := ed.Commit(t.Context())
	require.Error(t, err)
	assert.Equal(t, editor.StateSaveError, ed.State())

	saved, err := ed.Commit(t.Context())
	require.NoError(t, err)
	assert.Equal(t, models.ID("1"), saved.ID)
}

func TestEditor_BusyWhileLoading(t *testing.T) {
	ed, store := newEditor(t)

	started := make(chan struct{})
	release := make(chan struct{})

	store.On("GetWorkflow", mock.Anything, models.ID("3")).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.Workflow{ID: "3", Name: "Slow", Status: models.WorkflowStatusDraft}, nil).Once()

	done := make(chan error, 1)

	go func() {
		done <- ed.Load(context.Background(), "3")
	}()

	<-started

	assert.Equal(t, editor.StateLoading, ed.State())
	require.ErrorIs(t, ed.Load(t.Context(), "3"), editor.ErrBusy)

	_, err := ed.Commit(t.Context())
	require.ErrorIs(t, err, editor.ErrBusy)

	_, err = ed.AddStep()
	require.ErrorIs(t, err, editor.ErrNotEditable)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, editor.StateEditing, ed.State())
}

func TestEditor_CloseDropsLateResponse(t *testing.T) {
	ed, store := newEditor(t)

	started := make(chan struct{})
	release := make(chan struct{})

	store.On("GetWorkflow", mock.Anything, models.ID("4")).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.Workflow{ID: "4", Name: "Late", Status: models.WorkflowStatusDraft}, nil).Once()

	done := make(chan error, 1)

	go func() {
		done <- ed.Load(context.Background(), "4")
	}()

	<-started
	ed.Close()
	close(release)

	require.ErrorIs(t, <-done, editor.ErrClosed)
	assert.True(t, ed.Closed())
	assert.Equal(t, editor.StateLoading, ed.State())
	assert.Nil(t, ed.Workflow())

	_, err := ed.AddStep()
	require.ErrorIs(t, err, editor.ErrClosed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "editing", editor.StateEditing.String())
	assert.Equal(t, "save_error", editor.StateSaveError.String())
	assert.Equal(t, "state(42)", editor.State(42).String())
}
