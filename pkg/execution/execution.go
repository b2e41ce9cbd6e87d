// Package execution requests workflow runs and surfaces their records.
package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
)

// Client is the subset of the service API this package depends on.
type Client interface {
	ListWorkflows(ctx context.Context) ([]*models.Workflow, error)
	ExecuteWorkflow(ctx context.Context, id models.ID, input models.JSON) (*models.ExecutionAck, error)
	ListExecutions(ctx context.Context, id models.ID) ([]*models.Execution, error)
}

// Service triggers executions and reads execution history. It never mutates executions.
type Service struct {
	client Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new execution service.
func NewService(client Client, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger.With("module", "execution"),
		now:    time.Now,
	}
}

// Execute requests a run of the persisted workflow with the given input text.
// The input is parsed locally first; unparseable input fails with models.ErrInvalidInput
// before any request is made. A blank input is sent as {}.
func (s *Service) Execute(ctx context.Context, workflowID models.ID, inputText string) (*models.ExecutionAck, error) {
	if strings.TrimSpace(workflowID.String()) == "" {
		return nil, &models.ValidationError{Op: "Execute", Fields: []string{"workflowId"}, Reason: "workflow id is required", Err: models.ErrInvalidInput}
	}

	input, err := models.ParseJSON(inputText)
	if err != nil {
		return nil, fmt.Errorf("execute workflow %s: %w", workflowID, err)
	}

	ack, err := s.client.ExecuteWorkflow(ctx, workflowID, input)
	if err != nil {
		s.logger.WarnContext(ctx, "Execution request failed", "workflow_id", workflowID, "error", err)

		return nil, err
	}

	s.logger.InfoContext(ctx, "Execution accepted", "workflow_id", workflowID)

	return ack, nil
}

// List returns the executions of a workflow in the order the service reports them.
func (s *Service) List(ctx context.Context, workflowID models.ID) ([]*models.Execution, error) {
	if strings.TrimSpace(workflowID.String()) == "" {
		return nil, &models.ValidationError{Op: "List", Fields: []string{"workflowId"}, Reason: "workflow id is required", Err: models.ErrInvalidInput}
	}

	return s.client.ListExecutions(ctx, workflowID)
}

// Overview fetches every workflow and its executions, one request at a time,
// and summarizes them over the last days days.
func (s *Service) Overview(ctx context.Context, days int) (*Summary, error) {
	workflows, err := s.client.ListWorkflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	var executions []*models.Execution

	for _, workflow := range workflows {
		if workflow.ID.IsZero() {
			continue
		}

		list, err := s.client.ListExecutions(ctx, workflow.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list executions for workflow %s: %w", workflow.ID, err)
		}

		executions = append(executions, list...)
	}

	summary := Summarize(workflows, executions, s.now(), days)

	return &summary, nil
}
