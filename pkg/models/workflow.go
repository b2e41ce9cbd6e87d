// Package models defines the workflow definition model and its execution records.
package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "DRAFT"
	WorkflowStatusActive    WorkflowStatus = "ACTIVE"
	WorkflowStatusPaused    WorkflowStatus = "PAUSED"
	WorkflowStatusCompleted WorkflowStatus = "COMPLETED"
	WorkflowStatusFailed    WorkflowStatus = "FAILED"
)

// WorkflowStatuses lists every workflow status.
var WorkflowStatuses = []WorkflowStatus{
	WorkflowStatusDraft,
	WorkflowStatusActive,
	WorkflowStatusPaused,
	WorkflowStatusCompleted,
	WorkflowStatusFailed,
}

// Valid reports whether s is one of the known workflow statuses.
func (s WorkflowStatus) Valid() bool {
	return slices.Contains(WorkflowStatuses, s)
}

// Workflow is a named, ordered sequence of steps.
type Workflow struct {
	ID             ID             `json:"id,omitempty"`
	Name           string         `json:"name"                     validate:"required"`
	Description    string         `json:"description"`
	Status         WorkflowStatus `json:"status"                   validate:"required"`
	Steps          []Step         `json:"steps"`
	CreatedAt      *Timestamp     `json:"createdAt,omitempty"`
	UpdatedAt      *Timestamp     `json:"updatedAt,omitempty"`
	LastExecutedAt *Timestamp     `json:"lastExecutedAt,omitempty"`
}

// NewWorkflow returns an unsaved draft with no steps.
func NewWorkflow() *Workflow {
	return &Workflow{
		Status: WorkflowStatusDraft,
		Steps:  []Step{},
	}
}

// IsNew reports whether the workflow has never been persisted.
func (w *Workflow) IsNew() bool {
	return w.ID.IsZero()
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w
	clone.Steps = slices.Clone(w.Steps)

	if clone.Steps == nil {
		clone.Steps = []Step{}
	}

	clone.CreatedAt = cloneTimestamp(w.CreatedAt)
	clone.UpdatedAt = cloneTimestamp(w.UpdatedAt)
	clone.LastExecutedAt = cloneTimestamp(w.LastExecutedAt)

	return &clone
}

// Normalize orders steps by their stored stepOrder and renumbers them 1..n.
// Workflows received from a service are normalized before they are edited.
func (w *Workflow) Normalize() {
	if w.Steps == nil {
		w.Steps = []Step{}
	}

	slices.SortStableFunc(w.Steps, func(a, b Step) int {
		return cmp.Compare(a.StepOrder, b.StepOrder)
	})

	w.renumber()
}

// AddStep appends a new pending AI step and returns its index.
func (w *Workflow) AddStep() int {
	w.Steps = append(w.Steps, NewStep(len(w.Steps)+1))
	w.renumber()

	return len(w.Steps) - 1
}

// RemoveStep deletes the step at index and closes the gap in stepOrder.
// An invalid index leaves the steps untouched.
func (w *Workflow) RemoveStep(index int) error {
	if err := w.checkIndex("RemoveStep", index); err != nil {
		return err
	}

	w.Steps = slices.Delete(slices.Clone(w.Steps), index, index+1)
	w.renumber()

	return nil
}

// UpdateStep applies cmd to the step at index. stepOrder is never touched.
func (w *Workflow) UpdateStep(index int, cmd StepCommand) error {
	if err := w.checkIndex("UpdateStep", index); err != nil {
		return err
	}

	step := w.Steps[index]
	if err := cmd.applyStep(&step); err != nil {
		return err
	}

	w.Steps[index] = step

	return nil
}

// Update applies a workflow-level field replacement.
func (w *Workflow) Update(cmd WorkflowCommand) error {
	return cmd.applyWorkflow(w)
}

// ValidateForSave checks the rules a workflow must satisfy before it may be committed.
// Configuration and AI prompts are never inspected.
func (w *Workflow) ValidateForSave() error {
	var fields []string

	if strings.TrimSpace(w.Name) == "" {
		fields = append(fields, "name")
	}

	for i, step := range w.Steps {
		if strings.TrimSpace(step.Name) == "" {
			fields = append(fields, fmt.Sprintf("steps[%d].name", i))
		}
	}

	if len(fields) > 0 {
		return newValidationError("ValidateForSave", "workflow and step names are required", ErrInvalidWorkflow, fields...)
	}

	return nil
}

// ValidateEnums checks that the workflow status and every step type and status are known values.
func (w *Workflow) ValidateEnums() error {
	if !w.Status.Valid() {
		return newValidationError("ValidateEnums", "unknown workflow status "+string(w.Status), ErrInvalidStatus, "status")
	}

	for i, step := range w.Steps {
		if !step.Type.Valid() {
			return newValidationError("ValidateEnums", "unknown step type "+string(step.Type), ErrInvalidStepType, fmt.Sprintf("steps[%d].type", i))
		}

		if !step.Status.Valid() {
			return newValidationError("ValidateEnums", "unknown step status "+string(step.Status), ErrInvalidStepState, fmt.Sprintf("steps[%d].status", i))
		}
	}

	return nil
}

func (w *Workflow) checkIndex(op string, index int) error {
	if index < 0 || index >= len(w.Steps) {
		return &IndexError{Op: op, Index: index, Len: len(w.Steps)}
	}

	return nil
}

func (w *Workflow) renumber() {
	for i := range w.Steps {
		w.Steps[i].StepOrder = i + 1
	}
}

func cloneTimestamp(t *Timestamp) *Timestamp {
	if t == nil {
		return nil
	}

	c := *t

	return &c
}

// WorkflowCommand is a single workflow-level field replacement.
// The set of commands is closed; see SetWorkflowName, SetDescription and SetStatus.
type WorkflowCommand interface {
	applyWorkflow(w *Workflow) error
}

// SetWorkflowName replaces the workflow name.
type SetWorkflowName struct {
	Name string
}

func (c SetWorkflowName) applyWorkflow(w *Workflow) error {
	w.Name = c.Name

	return nil
}

// SetDescription replaces the workflow description.
type SetDescription struct {
	Description string
}

func (c SetDescription) applyWorkflow(w *Workflow) error {
	w.Description = c.Description

	return nil
}

// SetStatus replaces the workflow lifecycle status.
type SetStatus struct {
	Status WorkflowStatus
}

func (c SetStatus) applyWorkflow(w *Workflow) error {
	if !c.Status.Valid() {
		return newValidationError("SetStatus", "unknown workflow status "+string(c.Status), ErrInvalidStatus, "status")
	}

	w.Status = c.Status

	return nil
}
