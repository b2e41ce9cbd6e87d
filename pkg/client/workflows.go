package client

import (
	"context"
	"net/http"

	"github.com/dukex/flowsuite/pkg/models"
)

// ListWorkflows returns every workflow known to the service.
func (c *Client) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	workflows := make([]*models.Workflow, 0)

	if err := c.do(ctx, "ListWorkflows", http.MethodGet, "/workflows", nil, &workflows); err != nil {
		return nil, err
	}

	return workflows, nil
}

// GetWorkflow returns the workflow with the given id. A missing workflow yields ErrNotFound.
func (c *Client) GetWorkflow(ctx context.Context, id models.ID) (*models.Workflow, error) {
	var workflow models.Workflow

	if err := c.do(ctx, "GetWorkflow", http.MethodGet, workflowPath(id.String()), nil, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// CreateWorkflow persists a new workflow and returns it with its assigned id.
func (c *Client) CreateWorkflow(ctx context.Context, payload models.WorkflowPayload) (*models.Workflow, error) {
	payload.ID = ""

	var workflow models.Workflow

	if err := c.do(ctx, "CreateWorkflow", http.MethodPost, "/workflows", payload, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// UpdateWorkflow replaces the workflow with the given id.
func (c *Client) UpdateWorkflow(ctx context.Context, id models.ID, payload models.WorkflowPayload) (*models.Workflow, error) {
	var workflow models.Workflow

	if err := c.do(ctx, "UpdateWorkflow", http.MethodPut, workflowPath(id.String()), payload, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// DeleteWorkflow removes the workflow with the given id.
func (c *Client) DeleteWorkflow(ctx context.Context, id models.ID) error {
	return c.do(ctx, "DeleteWorkflow", http.MethodDelete, workflowPath(id.String()), nil, nil)
}
