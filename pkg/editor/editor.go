// Package editor owns one in-progress edit of one workflow and drives it through
// load, mutation and commit.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/flowsuite/pkg/models"
)

var (
	ErrNotEditable = errors.New("editor is not in an editable state")
	ErrBusy        = errors.New("editor has a request in flight")
	ErrClosed      = errors.New("editor session is closed")
)

// State is the position of an editor session in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateEditing
	StateSaving
	StateSaved
	StateLoadError
	StateSaveError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateLoadError:
		return "load_error"
	case StateSaveError:
		return "save_error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store is the persistence collaborator the editor loads from and commits to.
type Store interface {
	GetWorkflow(ctx context.Context, id models.ID) (*models.Workflow, error)
	CreateWorkflow(ctx context.Context, payload models.WorkflowPayload) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, id models.ID, payload models.WorkflowPayload) (*models.Workflow, error)
}

// Editor is a single edit session. It is safe for concurrent use, but at most one
// request to the store is outstanding at a time.
type Editor struct {
	mu       sync.Mutex
	store    Store
	logger   *slog.Logger
	state    State
	workflow *models.Workflow
	lastErr  error
	closed   bool
}

// New returns an editor in the Empty state.
func New(store Store, logger *slog.Logger) *Editor {
	return &Editor{
		store:  store,
		logger: logger.With("module", "editor"),
		state:  StateEmpty,
	}
}

// Create starts editing a new, unsaved draft.
func (e *Editor) Create() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	if e.state != StateEmpty {
		return fmt.Errorf("create in state %s: %w", e.state, ErrNotEditable)
	}

	e.workflow = models.NewWorkflow()
	e.state = StateEditing

	return nil
}

// Load fetches the workflow with the given id. It is accepted from Empty and,
// as a retry, from LoadError.
func (e *Editor) Load(ctx context.Context, id models.ID) error {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return ErrClosed
	}

	switch e.state {
	case StateLoading, StateSaving:
		e.mu.Unlock()

		return ErrBusy
	case StateEmpty, StateLoadError:
	default:
		e.mu.Unlock()

		return fmt.Errorf("load in state %s: %w", e.state, ErrNotEditable)
	}

	e.state = StateLoading
	e.mu.Unlock()

	e.logger.DebugContext(ctx, "Loading workflow", "workflow_id", id)

	workflow, err := e.store.GetWorkflow(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		e.logger.DebugContext(ctx, "Dropping load response for closed session", "workflow_id", id)

		return ErrClosed
	}

	if err == nil && workflow == nil {
		err = fmt.Errorf("workflow %s: empty response", id)
	}

	if err != nil {
		e.state = StateLoadError
		e.lastErr = err
		e.workflow = nil

		e.logger.WarnContext(ctx, "Failed to load workflow", "workflow_id", id, "error", err)

		return err
	}

	workflow = workflow.Clone()
	workflow.Normalize()

	e.workflow = workflow
	e.lastErr = nil
	e.state = StateEditing

	return nil
}

// AddStep appends a new step and returns its index. Any cmds are applied to the
// new step in the same mutation, so a failing command leaves no step behind.
func (e *Editor) AddStep(cmds ...models.StepCommand) (int, error) {
	var index int

	err := e.mutate("AddStep", func(w *models.Workflow) error {
		index = w.AddStep()

		for _, cmd := range cmds {
			if err := w.UpdateStep(index, cmd); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return -1, err
	}

	return index, nil
}

// RemoveStep deletes the step at index.
func (e *Editor) RemoveStep(index int) error {
	return e.mutate("RemoveStep", func(w *models.Workflow) error {
		return w.RemoveStep(index)
	})
}

// UpdateStep applies cmd to the step at index.
func (e *Editor) UpdateStep(index int, cmd models.StepCommand) error {
	return e.mutate("UpdateStep", func(w *models.Workflow) error {
		return w.UpdateStep(index, cmd)
	})
}

// UpdateWorkflow applies a workflow-level field replacement.
func (e *Editor) UpdateWorkflow(cmd models.WorkflowCommand) error {
	return e.mutate("UpdateWorkflow", func(w *models.Workflow) error {
		return w.Update(cmd)
	})
}

// mutate runs fn against a scratch copy and keeps the result only when fn succeeds.
// A mutation from SaveError returns the session to Editing and keeps the last error visible.
func (e *Editor) mutate(op string, fn func(w *models.Workflow) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	if e.state != StateEditing && e.state != StateSaveError {
		return fmt.Errorf("%s in state %s: %w", op, e.state, ErrNotEditable)
	}

	scratch := e.workflow.Clone()
	if err := fn(scratch); err != nil {
		return err
	}

	e.workflow = scratch
	e.state = StateEditing

	return nil
}

// Commit validates the workflow and persists it, creating it when it has no id
// and updating it otherwise. A validation failure never reaches the store.
func (e *Editor) Commit(ctx context.Context) (*models.Workflow, error) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, ErrClosed
	}

	switch e.state {
	case StateLoading, StateSaving:
		e.mu.Unlock()

		return nil, ErrBusy
	case StateEditing, StateSaveError:
	default:
		e.mu.Unlock()

		return nil, fmt.Errorf("commit in state %s: %w", e.state, ErrNotEditable)
	}

	if err := e.workflow.ValidateForSave(); err != nil {
		e.state = StateSaveError
		e.lastErr = err
		e.mu.Unlock()

		return nil, err
	}

	id := e.workflow.ID
	payload := e.workflow.ToPersistablePayload()
	e.state = StateSaving
	e.mu.Unlock()

	var (
		saved *models.Workflow
		err   error
	)

	if id.IsZero() {
		e.logger.DebugContext(ctx, "Creating workflow", "name", payload.Name, "steps", len(payload.Steps))
		saved, err = e.store.CreateWorkflow(ctx, payload)
	} else {
		e.logger.DebugContext(ctx, "Updating workflow", "workflow_id", id, "steps", len(payload.Steps))
		saved, err = e.store.UpdateWorkflow(ctx, id, payload)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		e.logger.DebugContext(ctx, "Dropping commit response for closed session", "workflow_id", id)

		return nil, ErrClosed
	}

	if err != nil {
		e.state = StateSaveError
		e.lastErr = err

		e.logger.WarnContext(ctx, "Failed to commit workflow", "workflow_id", id, "error", err)

		return nil, err
	}

	if saved == nil {
		saved = payload.Workflow()
	} else {
		saved = saved.Clone()
	}

	saved.Normalize()

	e.workflow = saved
	e.lastErr = nil
	e.state = StateSaved

	e.logger.InfoContext(ctx, "Workflow committed", "workflow_id", saved.ID)

	return saved.Clone(), nil
}

// Close tears the session down. Responses that arrive afterwards are discarded.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Workflow returns a copy of the workflow being edited, or nil when there is none.
func (e *Editor) Workflow() *models.Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.workflow.Clone()
}

// Err returns the error that moved the session into LoadError or SaveError.
// It is kept across edits made from SaveError until the next successful commit.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastErr
}

// Closed reports whether Close was called.
func (e *Editor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}
