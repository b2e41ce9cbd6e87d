// Package assistant is the ad-hoc AI console: free-form prompts, data analysis and decisions.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Client is the subset of the AI service API this package depends on.
type Client interface {
	Process(ctx context.Context, req models.ProcessRequest) (*models.ProcessResponse, error)
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error)
	Decide(ctx context.Context, req models.DecisionRequest) (*models.DecisionResponse, error)
}

// Console validates console input and forwards it to the AI service.
// Free-form JSON text is parsed once here; malformed text never reaches the network.
type Console struct {
	client   Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewConsole creates a new AI console.
func NewConsole(client Client, logger *slog.Logger) *Console {
	return &Console{
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "assistant"),
	}
}

// Process sends prompt with the JSON object in contextText; blank context means {}.
func (c *Console) Process(ctx context.Context, prompt, contextText string) (*models.ProcessResponse, error) {
	document, err := models.ParseJSONObject(contextText)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	req := models.ProcessRequest{Prompt: strings.TrimSpace(prompt), Context: document}
	if err := c.check("Process", req); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "Processing prompt", "prompt_length", len(req.Prompt))

	return c.client.Process(ctx, req)
}

// Analyze sends data for analysis. An empty analysisType defaults to general.
func (c *Console) Analyze(ctx context.Context, data string, analysisType models.AnalysisType) (*models.Analysis, error) {
	if analysisType == "" {
		analysisType = models.AnalysisTypeGeneral
	}

	req := models.AnalyzeRequest{Data: strings.TrimSpace(data), AnalysisType: analysisType}
	if err := c.check("Analyze", req); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "Analyzing data", "analysis_type", analysisType, "data_length", len(req.Data))

	return c.client.Analyze(ctx, req)
}

// Decide sends scenario with the JSON object in parametersText; blank parameters mean {}.
func (c *Console) Decide(ctx context.Context, scenario, parametersText string) (*models.DecisionResponse, error) {
	document, err := models.ParseJSONObject(parametersText)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}

	req := models.DecisionRequest{Scenario: strings.TrimSpace(scenario), Parameters: document}
	if err := c.check("Decide", req); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "Requesting decision", "scenario_length", len(req.Scenario))

	return c.client.Decide(ctx, req)
}

func (c *Console) check(op string, req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%s: %w", op, err)
	}

	fields := make([]string, 0, len(validationErrors))
	reasons := make([]string, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field())
		reasons = append(reasons, describe(fieldErr))
	}

	return &models.ValidationError{
		Op:     op,
		Fields: fields,
		Reason: strings.Join(reasons, "; "),
		Err:    models.ErrInvalidInput,
	}
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return strings.ToLower(fieldErr.Field()) + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", strings.ToLower(fieldErr.Field()), fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", strings.ToLower(fieldErr.Field()), fieldErr.Tag())
	}
}
