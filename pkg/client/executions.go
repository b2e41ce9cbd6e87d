package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dukex/flowsuite/pkg/models"
)

// ExecuteWorkflow asks the service to run a persisted workflow with the given input.
// The returned acknowledgement confirms acceptance only; the execution record it
// carries, when the service returns one, is typically still RUNNING.
func (c *Client) ExecuteWorkflow(ctx context.Context, id models.ID, input models.JSON) (*models.ExecutionAck, error) {
	if input.IsZero() {
		input = models.EmptyObject()
	}

	var body json.RawMessage

	if err := c.do(ctx, "ExecuteWorkflow", http.MethodPost, workflowPath(id.String())+"/execute", input, &body); err != nil {
		return nil, err
	}

	ack := &models.ExecutionAck{WorkflowID: id}

	// any 2xx body acknowledges the request; an execution record is optional
	var execution models.Execution
	if err := json.Unmarshal(body, &execution); err == nil && !execution.ID.IsZero() {
		if execution.WorkflowID.IsZero() {
			execution.WorkflowID = id
		}

		ack.Execution = &execution
	}

	return ack, nil
}

// ListExecutions returns the executions of a workflow in the order the service reports them.
func (c *Client) ListExecutions(ctx context.Context, id models.ID) ([]*models.Execution, error) {
	executions := make([]*models.Execution, 0)

	if err := c.do(ctx, "ListExecutions", http.MethodGet, workflowPath(id.String())+"/executions", nil, &executions); err != nil {
		return nil, err
	}

	for _, execution := range executions {
		if execution.WorkflowID.IsZero() {
			execution.WorkflowID = id
		}
	}

	return executions, nil
}
