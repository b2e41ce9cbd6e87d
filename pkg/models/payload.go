package models

// WorkflowPayload is the body sent to the workflow service on create and update.
type WorkflowPayload struct {
	ID          ID             `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"`
	Steps       []StepPayload  `json:"steps"`
}

// StepPayload is one step of a WorkflowPayload.
type StepPayload struct {
	ID            ID         `json:"id,omitempty"`
	Name          string     `json:"name"`
	StepOrder     int        `json:"stepOrder"`
	Type          StepType   `json:"type"`
	Status        StepStatus `json:"status"`
	AIPrompt      string     `json:"aiPrompt"`
	Configuration string     `json:"configuration"`
}

// ToPersistablePayload copies the workflow into its wire shape.
// Steps keep their current order and stepOrder is recomputed from position,
// so stale values never leave the client.
func (w *Workflow) ToPersistablePayload() WorkflowPayload {
	payload := WorkflowPayload{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Status:      w.Status,
		Steps:       make([]StepPayload, len(w.Steps)),
	}

	for i, step := range w.Steps {
		payload.Steps[i] = StepPayload{
			ID:            step.ID,
			Name:          step.Name,
			StepOrder:     i + 1,
			Type:          step.Type,
			Status:        step.Status,
			AIPrompt:      step.AIPrompt,
			Configuration: step.Configuration,
		}
	}

	return payload
}

// Workflow converts a payload received by a service back into a workflow.
func (p WorkflowPayload) Workflow() *Workflow {
	workflow := &Workflow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Steps:       make([]Step, len(p.Steps)),
	}

	for i, step := range p.Steps {
		workflow.Steps[i] = Step{
			ID:            step.ID,
			Name:          step.Name,
			StepOrder:     step.StepOrder,
			Type:          step.Type,
			Status:        step.Status,
			AIPrompt:      step.AIPrompt,
			Configuration: step.Configuration,
		}
	}

	return workflow
}
