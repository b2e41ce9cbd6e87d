package models

import (
	"slices"
	"strings"
)

// StepType is the kind of work a step performs.
type StepType string

const (
	StepTypeAIProcessing       StepType = "AI_PROCESSING"
	StepTypeDataTransformation StepType = "DATA_TRANSFORMATION"
	StepTypeNotification       StepType = "NOTIFICATION"
	StepTypeConditional        StepType = "CONDITIONAL"
	StepTypeManualReview       StepType = "MANUAL_REVIEW"
)

// StepTypes lists every step type in presentation order.
var StepTypes = []StepType{
	StepTypeAIProcessing,
	StepTypeDataTransformation,
	StepTypeNotification,
	StepTypeConditional,
	StepTypeManualReview,
}

// Valid reports whether t is one of the known step types.
func (t StepType) Valid() bool {
	return slices.Contains(StepTypes, t)
}

// StepStatus is the execution state of a single step, written by the engine.
type StepStatus string

const (
	StepStatusPending   StepStatus = "PENDING"
	StepStatusRunning   StepStatus = "RUNNING"
	StepStatusCompleted StepStatus = "COMPLETED"
	StepStatusFailed    StepStatus = "FAILED"
	StepStatusSkipped   StepStatus = "SKIPPED"
)

// stepStatusInProgress is an alias some services emit for RUNNING.
const stepStatusInProgress = "IN_PROGRESS"

// Valid reports whether s is one of the known step statuses.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusRunning, StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

func (s *StepStatus) UnmarshalText(text []byte) error {
	value := strings.ToUpper(strings.TrimSpace(string(text)))
	if value == stepStatusInProgress {
		value = string(StepStatusRunning)
	}

	*s = StepStatus(value)

	return nil
}

// Step is one unit of work in a workflow.
type Step struct {
	ID            ID         `json:"id,omitempty"`
	Name          string     `json:"name"`
	StepOrder     int        `json:"stepOrder"`
	Type          StepType   `json:"type"`
	Status        StepStatus `json:"status"`
	AIPrompt      string     `json:"aiPrompt"`
	Configuration string     `json:"configuration"`
	Result        string     `json:"result,omitempty"`
}

// NewStep returns the step appended by an editor: an AI step waiting to run.
func NewStep(order int) Step {
	return Step{
		StepOrder: order,
		Type:      StepTypeAIProcessing,
		Status:    StepStatusPending,
	}
}

// StepCommand is a single field replacement on one step.
// The set of commands is closed; see SetName, SetType, SetPrompt and SetConfiguration.
type StepCommand interface {
	applyStep(step *Step) error
}

// SetName replaces the step name.
type SetName struct {
	Name string
}

func (c SetName) applyStep(step *Step) error {
	step.Name = c.Name

	return nil
}

// SetType replaces the step type.
type SetType struct {
	Type StepType
}

func (c SetType) applyStep(step *Step) error {
	if !c.Type.Valid() {
		return newValidationError("SetType", "unknown step type "+string(c.Type), ErrInvalidStepType, "type")
	}

	step.Type = c.Type

	return nil
}

// SetPrompt replaces the AI prompt. The prompt is kept for non-AI steps but has no effect there.
type SetPrompt struct {
	Prompt string
}

func (c SetPrompt) applyStep(step *Step) error {
	step.AIPrompt = c.Prompt

	return nil
}

// SetConfiguration replaces the opaque configuration payload.
type SetConfiguration struct {
	Configuration string
}

func (c SetConfiguration) applyStep(step *Step) error {
	step.Configuration = c.Configuration

	return nil
}
