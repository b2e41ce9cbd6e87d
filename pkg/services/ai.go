package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowsuite/pkg/models"
)

// AI answers the AI console endpoints with deterministic canned responses.
// No model is called; the answers only echo their inputs.
type AI struct {
	logger *slog.Logger
}

func NewAI(logger *slog.Logger) *AI {
	return &AI{logger: logger.With("module", "ai-service")}
}

func (a *AI) Process(ctx context.Context, req models.ProcessRequest) (*models.ProcessResponse, error) {
	a.logger.InfoContext(ctx, "Processing AI request", "prompt_length", len(req.Prompt))

	var contextKeys map[string]any
	if !req.Context.IsZero() {
		_ = req.Context.Decode(&contextKeys)
	}

	return &models.ProcessResponse{
		Result:  fmt.Sprintf("Processed prompt %q with %d context value(s)", req.Prompt, len(contextKeys)),
		Success: true,
	}, nil
}

func (a *AI) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = models.AnalysisTypeGeneral
	}

	a.logger.InfoContext(ctx, "Analyzing data", "analysis_type", analysisType, "data_length", len(req.Data))

	lines := len(strings.Split(strings.TrimSpace(req.Data), "\n"))

	riskLevel := "LOW"
	if analysisType == models.AnalysisTypeRisk {
		riskLevel = "MEDIUM"
	}

	return &models.Analysis{
		Summary: fmt.Sprintf("%s analysis of %d line(s) completed", analysisType, lines),
		KeyFindings: models.MustJSON([]string{
			fmt.Sprintf("%d characters analysed", len(req.Data)),
		}),
		Recommendations: models.MustJSON([]string{
			"Review the findings before acting on them",
		}),
		RiskLevel: riskLevel,
		Success:   true,
	}, nil
}

func (a *AI) Decide(ctx context.Context, req models.DecisionRequest) (*models.DecisionResponse, error) {
	a.logger.InfoContext(ctx, "Generating decision", "scenario_length", len(req.Scenario))

	return &models.DecisionResponse{
		Decision: fmt.Sprintf("Proceed with %q after review; parameters considered: %s", req.Scenario, req.Parameters.String()),
		Success:  true,
	}, nil
}
