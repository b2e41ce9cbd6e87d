package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
	ExecutionStatusCancelled ExecutionStatus = "CANCELLED"
)

// ExecutionStatuses lists every execution status.
var ExecutionStatuses = []ExecutionStatus{
	ExecutionStatusRunning,
	ExecutionStatusCompleted,
	ExecutionStatusFailed,
	ExecutionStatusCancelled,
}

// Finished reports whether s is a terminal status.
func (s ExecutionStatus) Finished() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// Execution is a read-only record of one run of a workflow.
type Execution struct {
	ID              ID              `json:"id"`
	WorkflowID      ID              `json:"workflowId"`
	Status          ExecutionStatus `json:"status"`
	StartedAt       *Timestamp      `json:"startedAt,omitempty"`
	CompletedAt     *Timestamp      `json:"completedAt,omitempty"`
	ExecutionTimeMs *int64          `json:"executionTimeMs,omitempty"`
	InputData       string          `json:"inputData,omitempty"`
	OutputData      string          `json:"outputData,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
}

// Duration returns the recorded execution time, if the run has completed.
func (e *Execution) Duration() (time.Duration, bool) {
	if e.ExecutionTimeMs == nil {
		return 0, false
	}

	return time.Duration(*e.ExecutionTimeMs) * time.Millisecond, true
}

// Complete closes the execution with the given terminal status at completedAt.
func (e *Execution) Complete(status ExecutionStatus, completedAt time.Time) {
	e.Status = status
	e.CompletedAt = NewTimestamp(completedAt)

	if e.StartedAt != nil {
		elapsed := e.CompletedAt.Sub(e.StartedAt.Time).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}

		e.ExecutionTimeMs = &elapsed
	}
}

// ExecutionAck is the acknowledgement returned when an execution is requested.
// It confirms acceptance, not completion.
type ExecutionAck struct {
	WorkflowID ID
	Execution  *Execution
}
