// Package events defines the execution lifecycle events exchanged inside the sandbox.
package events

import (
	"time"

	"github.com/dukex/flowsuite/pkg/models"
)

type EventType string

// Topic carries every execution lifecycle event.
const Topic = "flowsuite.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionAcceptedEvent  EventType = "execution.accepted"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
)

type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	WorkflowID  models.ID `json:"workflow_id"`
	ExecutionID models.ID `json:"execution_id"`
}

// NewBaseEvent stamps an event of the given type for one execution.
func NewBaseEvent(id string, eventType EventType, execution *models.Execution) BaseEvent {
	return BaseEvent{
		ID:          id,
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
	}
}

// ExecutionAccepted is published when the API records a new RUNNING execution.
type ExecutionAccepted struct {
	BaseEvent

	InputData string `json:"input_data,omitempty"`
}

func (e ExecutionAccepted) GetType() EventType {
	return ExecutionAcceptedEvent
}

// ExecutionCompleted is published once an accepted execution has been closed successfully.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionTimeMs int64 `json:"execution_time_ms"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Error string `json:"error"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
