package assistant_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dukex/flowsuite/pkg/assistant"
	"github.com/dukex/flowsuite/pkg/mocks"
	"github.com/dukex/flowsuite/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConsole(t *testing.T) (*assistant.Console, *mocks.MockAIClient) {
	t.Helper()

	client := &mocks.MockAIClient{}
	t.Cleanup(func() { client.AssertExpectations(t) })

	return assistant.NewConsole(client, slog.New(slog.NewTextHandler(io.Discard, nil))), client
}

func TestConsole_Process(t *testing.T) {
	console, client := newConsole(t)

	client.On("Process", mock.Anything, mock.MatchedBy(func(req models.ProcessRequest) bool {
		return req.Prompt == "summarize" && req.Context.String() == "{}"
	})).Return(&models.ProcessResponse{Result: "done", Success: true}, nil).Once()

	resp, err := console.Process(t.Context(), "  summarize ", "")

	require.NoError(t, err)
	assert.Equal(t, "done", resp.Result)
}

func TestConsole_RejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name string
		call func(c *assistant.Console) error
	}{
		{
			name: "malformed context",
			call: func(c *assistant.Console) error {
				_, err := c.Process(t.Context(), "hi", "{broken")

				return err
			},
		},
		{
			name: "context is not an object",
			call: func(c *assistant.Console) error {
				_, err := c.Process(t.Context(), "hi", "[1,2]")

				return err
			},
		},
		{
			name: "empty prompt",
			call: func(c *assistant.Console) error {
				_, err := c.Process(t.Context(), "   ", "{}")

				return err
			},
		},
		{
			name: "empty data",
			call: func(c *assistant.Console) error {
				_, err := c.Analyze(t.Context(), "", models.AnalysisTypeRisk)

				return err
			},
		},
		{
			name: "unknown analysis type",
			call: func(c *assistant.Console) error {
				_, err := c.Analyze(t.Context(), "numbers", "astrology")

				return err
			},
		},
		{
			name: "empty scenario",
			call: func(c *assistant.Console) error {
				_, err := c.Decide(t.Context(), "", "{}")

				return err
			},
		},
		{
			name: "malformed parameters",
			call: func(c *assistant.Console) error {
				_, err := c.Decide(t.Context(), "expand", "budget=5")

				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console, client := newConsole(t)

			err := tt.call(console)

			require.ErrorIs(t, err, models.ErrInvalidInput)
			assert.True(t, models.IsValidationError(err))
			client.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
			client.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
			client.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything)
		})
	}
}

func TestConsole_Analyze_DefaultsToGeneral(t *testing.T) {
	console, client := newConsole(t)

	client.On("Analyze", mock.Anything, models.AnalyzeRequest{Data: "q1 revenue", AnalysisType: models.AnalysisTypeGeneral}).
		Return(&models.Analysis{Summary: "steady", RiskLevel: "LOW", Success: true}, nil).Once()

	analysis, err := console.Analyze(t.Context(), "q1 revenue", "")

	require.NoError(t, err)
	assert.True(t, analysis.Structured())
	assert.Equal(t, "steady", analysis.Summary)
}

func TestConsole_Analyze_ValidationMessage(t *testing.T) {
	console, _ := newConsole(t)

	_, err := console.Analyze(t.Context(), "numbers", "astrology")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"AnalysisType"}, validationErr.Fields)
	assert.Contains(t, validationErr.Reason, "general financial performance risk")
}

func TestConsole_Decide(t *testing.T) {
	console, client := newConsole(t)

	client.On("Decide", mock.Anything, mock.MatchedBy(func(req models.DecisionRequest) bool {
		return req.Scenario == "open a new office" && req.Parameters.String() == `{"budget": 5}`
	})).Return(&models.DecisionResponse{Decision: "wait", Success: true}, nil).Once()

	resp, err := console.Decide(t.Context(), "open a new office", `{"budget": 5}`)

	require.NoError(t, err)
	assert.Equal(t, "wait", resp.Decision)
}
