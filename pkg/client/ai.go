package client

import (
	"context"
	"net/http"

	"github.com/dukex/flowsuite/pkg/models"
)

// Process sends a free-form prompt with optional context to the AI service.
func (c *Client) Process(ctx context.Context, req models.ProcessRequest) (*models.ProcessResponse, error) {
	if req.Context.IsZero() {
		req.Context = models.EmptyObject()
	}

	var resp models.ProcessResponse

	if err := c.do(ctx, "Process", http.MethodPost, "/ai/process", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Analyze asks the AI service for a structured analysis of data.
func (c *Client) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	if req.AnalysisType == "" {
		req.AnalysisType = models.AnalysisTypeGeneral
	}

	var resp models.Analysis

	if err := c.do(ctx, "Analyze", http.MethodPost, "/ai/analyze", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Decide asks the AI service for a decision on a scenario.
func (c *Client) Decide(ctx context.Context, req models.DecisionRequest) (*models.DecisionResponse, error) {
	if req.Parameters.IsZero() {
		req.Parameters = models.EmptyObject()
	}

	var resp models.DecisionResponse

	if err := c.do(ctx, "Decide", http.MethodPost, "/ai/decision", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
