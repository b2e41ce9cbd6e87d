// Package web provides the HTTP handlers of the sandbox workflow API.
package web

import "github.com/dukex/flowsuite/pkg/models"

// WorkflowRequest is the body of workflow create and update requests.
// Ids, timestamps and step results are owned by the server and ignored when sent.
type WorkflowRequest struct {
	ID          models.ID             `json:"id,omitempty"`
	Name        string                `json:"name"                 validate:"required"`
	Description string                `json:"description"`
	Status      models.WorkflowStatus `json:"status"               validate:"omitempty,oneof=DRAFT ACTIVE PAUSED COMPLETED FAILED"`
	Steps       []StepRequest         `json:"steps"                validate:"dive"`
}

// StepRequest is one step of a WorkflowRequest.
type StepRequest struct {
	ID            models.ID         `json:"id,omitempty"`
	Name          string            `json:"name"          validate:"required"`
	StepOrder     int               `json:"stepOrder"     validate:"min=0"`
	Type          models.StepType   `json:"type"          validate:"required,oneof=AI_PROCESSING DATA_TRANSFORMATION NOTIFICATION CONDITIONAL MANUAL_REVIEW"`
	Status        models.StepStatus `json:"status"`
	AIPrompt      string            `json:"aiPrompt"`
	Configuration string            `json:"configuration"`
}

// Payload converts the request into the service payload.
func (r WorkflowRequest) Payload() models.WorkflowPayload {
	payload := models.WorkflowPayload{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Steps:       make([]models.StepPayload, len(r.Steps)),
	}

	for i, step := range r.Steps {
		payload.Steps[i] = models.StepPayload{
			ID:            step.ID,
			Name:          step.Name,
			StepOrder:     step.StepOrder,
			Type:          step.Type,
			Status:        step.Status,
			AIPrompt:      step.AIPrompt,
			Configuration: step.Configuration,
		}
	}

	return payload
}

// AnalyzeRequest is the body of /ai/analyze. An empty analysis type means general.
type AnalyzeRequest struct {
	Data         string              `json:"data"         validate:"required"`
	AnalysisType models.AnalysisType `json:"analysisType" validate:"omitempty,oneof=general financial performance risk"`
}
