package editor

import (
	"errors"
	"fmt"

	"github.com/dukex/flowsuite/pkg/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScript = errors.New("invalid edit script")

// Operation names accepted in an edit script.
const (
	OpAddStep              = "addStep"
	OpRemoveStep           = "removeStep"
	OpSetStepName          = "setStepName"
	OpSetStepType          = "setStepType"
	OpSetStepPrompt        = "setStepPrompt"
	OpSetStepConfiguration = "setStepConfiguration"
	OpSetName              = "setName"
	OpSetDescription       = "setDescription"
	OpSetStatus            = "setStatus"
)

// Script is an ordered list of edit operations, typically authored as YAML:
//
//	workflow: "42"
//	operations:
//	  - op: setName
//	    value: Monthly invoices
//	  - op: addStep
//	    name: Extract totals
//	    prompt: Sum every line item
//	  - op: setStepType
//	    index: 0
//	    value: DATA_TRANSFORMATION
//
// Since JSON is a subset of YAML, JSON scripts are accepted as well.
type Script struct {
	Workflow   models.ID   `yaml:"workflow,omitempty"`
	Operations []Operation `yaml:"operations"`
}

// Operation is one step of a Script. Index addresses a step for step-level
// operations; Value carries the replacement for setters. An addStep operation may
// prefill the new step with Name, Type, Prompt and Configuration.
type Operation struct {
	Op            string `yaml:"op"`
	Index         *int   `yaml:"index,omitempty"`
	Value         string `yaml:"value,omitempty"`
	Name          string `yaml:"name,omitempty"`
	Type          string `yaml:"type,omitempty"`
	Prompt        string `yaml:"prompt,omitempty"`
	Configuration string `yaml:"configuration,omitempty"`
}

// ParseScript decodes and checks a script without applying it.
func ParseScript(data []byte) (*Script, error) {
	var script Script

	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}

	for i, op := range script.Operations {
		if err := op.check(); err != nil {
			return nil, fmt.Errorf("%w: operation %d: %w", ErrInvalidScript, i+1, err)
		}
	}

	return &script, nil
}

// Apply runs every operation against the editor in order and stops at the first failure.
func (s *Script) Apply(e *Editor) error {
	for i, op := range s.Operations {
		if err := op.apply(e); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i+1, op.Op, err)
		}
	}

	return nil
}

func (o Operation) check() error {
	switch o.Op {
	case OpAddStep, OpSetName, OpSetDescription, OpSetStatus:
		return nil
	case OpRemoveStep, OpSetStepName, OpSetStepType, OpSetStepPrompt, OpSetStepConfiguration:
		if o.Index == nil {
			return fmt.Errorf("%s requires an index", o.Op)
		}

		return nil
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", o.Op)
	}
}

func (o Operation) apply(e *Editor) error {
	if err := o.check(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}

	switch o.Op {
	case OpAddStep:
		return o.addStep(e)
	case OpRemoveStep:
		return e.RemoveStep(*o.Index)
	case OpSetStepName:
		return e.UpdateStep(*o.Index, models.SetName{Name: o.Value})
	case OpSetStepType:
		return e.UpdateStep(*o.Index, models.SetType{Type: models.StepType(o.Value)})
	case OpSetStepPrompt:
		return e.UpdateStep(*o.Index, models.SetPrompt{Prompt: o.Value})
	case OpSetStepConfiguration:
		return e.UpdateStep(*o.Index, models.SetConfiguration{Configuration: o.Value})
	case OpSetName:
		return e.UpdateWorkflow(models.SetWorkflowName{Name: o.Value})
	case OpSetDescription:
		return e.UpdateWorkflow(models.SetDescription{Description: o.Value})
	default:
		return e.UpdateWorkflow(models.SetStatus{Status: models.WorkflowStatus(o.Value)})
	}
}

func (o Operation) addStep(e *Editor) error {
	var commands []models.StepCommand

	if o.Name != "" {
		commands = append(commands, models.SetName{Name: o.Name})
	}

	if o.Type != "" {
		commands = append(commands, models.SetType{Type: models.StepType(o.Type)})
	}

	if o.Prompt != "" {
		commands = append(commands, models.SetPrompt{Prompt: o.Prompt})
	}

	if o.Configuration != "" {
		commands = append(commands, models.SetConfiguration{Configuration: o.Configuration})
	}

	_, err := e.AddStep(commands...)

	return err
}
