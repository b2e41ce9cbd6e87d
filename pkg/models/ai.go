package models

import "slices"

// AnalysisType selects the lens the AI service applies to analyzed data.
type AnalysisType string

const (
	AnalysisTypeGeneral     AnalysisType = "general"
	AnalysisTypeFinancial   AnalysisType = "financial"
	AnalysisTypePerformance AnalysisType = "performance"
	AnalysisTypeRisk        AnalysisType = "risk"
)

// AnalysisTypes lists every analysis type.
var AnalysisTypes = []AnalysisType{
	AnalysisTypeGeneral,
	AnalysisTypeFinancial,
	AnalysisTypePerformance,
	AnalysisTypeRisk,
}

// Valid reports whether t is one of the known analysis types.
func (t AnalysisType) Valid() bool {
	return slices.Contains(AnalysisTypes, t)
}

// ProcessRequest asks the AI service to answer a free-form prompt.
type ProcessRequest struct {
	Prompt  string `json:"prompt"  validate:"required"`
	Context JSON   `json:"context"`
}

// ProcessResponse is the AI service answer to a ProcessRequest.
type ProcessResponse struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
}

// AnalyzeRequest asks the AI service to analyze a block of data.
type AnalyzeRequest struct {
	Data         string       `json:"data"         validate:"required"`
	AnalysisType AnalysisType `json:"analysisType" validate:"required,oneof=general financial performance risk"`
}

// Analysis is a structured analysis, or the raw model response when it could not be structured.
type Analysis struct {
	Summary         string `json:"summary,omitempty"`
	KeyFindings     JSON   `json:"keyFindings,omitzero"`
	Recommendations JSON   `json:"recommendations,omitzero"`
	RiskLevel       string `json:"riskLevel,omitempty"`
	RawResponse     string `json:"rawResponse,omitempty"`
	Success         bool   `json:"success"`
}

// Structured reports whether the analysis carries structured fields rather than a raw response.
func (a *Analysis) Structured() bool {
	return a.RawResponse == "" || a.Summary != ""
}

// DecisionRequest asks the AI service to decide on a scenario.
type DecisionRequest struct {
	Scenario   string `json:"scenario"   validate:"required"`
	Parameters JSON   `json:"parameters"`
}

// DecisionResponse is the AI service answer to a DecisionRequest.
type DecisionResponse struct {
	Decision string `json:"decision"`
	Success  bool   `json:"success"`
}
