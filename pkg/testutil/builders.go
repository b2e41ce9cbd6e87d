// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/google/uuid"
)

// CreateTestWorkflow creates a saved-looking ACTIVE workflow with two steps.
// Overrides run in order after the defaults are set.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	now := models.NewTimestamp(time.Now())

	workflow := &models.Workflow{
		ID:          models.ID(uuid.NewString()),
		Name:        "Invoice triage",
		Description: "classify incoming invoices",
		Status:      models.WorkflowStatusActive,
		Steps: []models.Step{
			CreateTestStep(1, WithStepName("classify"), WithPrompt("classify the invoice")),
			CreateTestStep(2,
				WithStepName("notify ops"),
				WithStepType(models.StepTypeNotification),
				WithConfiguration(`{"channel":"ops"}`),
			),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithCreatedAt sets both creation and update time.
func WithCreatedAt(at time.Time) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.CreatedAt = models.NewTimestamp(at)
		w.UpdatedAt = models.NewTimestamp(at)
	}
}

func WithWorkflowName(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Name = name
	}
}

func WithWorkflowStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithSteps replaces the default steps.
func WithSteps(steps ...models.Step) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Steps = steps
	}
}

// CreateTestStep creates a pending AI step at the given 1-based position.
func CreateTestStep(order int, overrides ...func(*models.Step)) models.Step {
	step := models.NewStep(order)
	step.ID = models.ID(uuid.NewString())
	step.Name = "Test Step"

	for _, override := range overrides {
		override(&step)
	}

	return step
}

func WithStepName(name string) func(*models.Step) {
	return func(s *models.Step) {
		s.Name = name
	}
}

func WithStepType(stepType models.StepType) func(*models.Step) {
	return func(s *models.Step) {
		s.Type = stepType
	}
}

func WithPrompt(prompt string) func(*models.Step) {
	return func(s *models.Step) {
		s.AIPrompt = prompt
	}
}

func WithConfiguration(configuration string) func(*models.Step) {
	return func(s *models.Step) {
		s.Configuration = configuration
	}
}

// CreateTestExecution creates a RUNNING execution of workflowID started now.
func CreateTestExecution(workflowID models.ID, overrides ...func(*models.Execution)) *models.Execution {
	execution := &models.Execution{
		ID:         models.ID(uuid.NewString()),
		WorkflowID: workflowID,
		Status:     models.ExecutionStatusRunning,
		StartedAt:  models.NewTimestamp(time.Now()),
		InputData:  `{"invoice":42}`,
	}

	for _, override := range overrides {
		override(execution)
	}

	return execution
}

func WithStartedAt(at time.Time) func(*models.Execution) {
	return func(e *models.Execution) {
		e.StartedAt = models.NewTimestamp(at)
	}
}

// WithCompletion closes the execution with status after elapsed.
func WithCompletion(status models.ExecutionStatus, elapsed time.Duration) func(*models.Execution) {
	return func(e *models.Execution) {
		e.Complete(status, e.StartedAt.Add(elapsed))
	}
}
