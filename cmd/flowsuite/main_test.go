package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowsuite/pkg/channels/gochannel"
	"github.com/dukex/flowsuite/pkg/eventbus"
	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence/file"
	"github.com/dukex/flowsuite/pkg/sandbox"
	"github.com/dukex/flowsuite/pkg/services"
	"github.com/dukex/flowsuite/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startAPI serves the workflow API in-process and returns its base URL.
func startAPI(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)
	t.Cleanup(func() { _ = bus.Close() })

	persistence := file.NewPersistence(t.TempDir())
	workflows := services.NewWorkflow(persistence, logger)
	executions := services.NewExecution(persistence, bus, workflows, logger)

	require.NoError(t, sandbox.NewRunner(bus, workflows, executions, logger, 0).Start(t.Context()))

	app := fiber.New()
	web.NewAPIHandlers(workflows, executions, services.NewAI(logger), validator.New(validator.WithRequiredStructEnabled())).
		Register(app.Group("/api"))

	server := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(server.Close)

	return server.URL + "/api"
}

// runCLI runs the command line with args and returns what it printed.
func runCLI(t *testing.T, apiURL string, args ...string) (string, error) {
	var out bytes.Buffer

	command := newCommand()
	command.Writer = &out
	command.ErrWriter = io.Discard

	argv := append([]string{"flowsuite", "--api-url", apiURL, "--log-level", "error"}, args...)
	err := command.Run(t.Context(), argv)

	return out.String(), err
}

func createFromCLI(t *testing.T, apiURL string) models.Workflow {
	t.Helper()

	out, err := runCLI(t, apiURL, "-o", "json", "workflows", "create", "--name", "Invoice triage", "--status", "ACTIVE")
	require.NoError(t, err)

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal([]byte(out), &workflow))
	require.False(t, workflow.ID.IsZero())

	return workflow
}

func TestCLI_CreateAndList(t *testing.T) {
	apiURL := startAPI(t)
	created := createFromCLI(t, apiURL)

	assert.Equal(t, "Invoice triage", created.Name)
	assert.Equal(t, models.WorkflowStatusActive, created.Status)

	out, err := runCLI(t, apiURL, "workflows", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, string(created.ID))
	assert.Contains(t, out, "Invoice triage")

	out, err = runCLI(t, apiURL, "workflows", "get", string(created.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "ACTIVE")
}

func TestCLI_Apply(t *testing.T) {
	apiURL := startAPI(t)
	created := createFromCLI(t, apiURL)

	script := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(script, []byte(`
operations:
  - op: setDescription
    value: Route invoices to the owning team
  - op: addStep
    name: classify
    prompt: Which team owns this invoice?
  - op: addStep
    name: notify ops
    type: NOTIFICATION
`), 0o600))

	out, err := runCLI(t, apiURL, "-o", "json", "workflows", "apply", "--workflow", string(created.ID), script)
	require.NoError(t, err)

	var updated models.Workflow
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Route invoices to the owning team", updated.Description)
	require.Len(t, updated.Steps, 2)
	assert.Equal(t, models.StepTypeNotification, updated.Steps[1].Type)
	assert.Equal(t, 2, updated.Steps[1].StepOrder)
}

func TestCLI_Apply_DryRunDoesNotSave(t *testing.T) {
	apiURL := startAPI(t)

	script := filepath.Join(t.TempDir(), "new.yaml")
	require.NoError(t, os.WriteFile(script, []byte("operations:\n  - op: setName\n    value: Draft only\n"), 0o600))

	out, err := runCLI(t, apiURL, "workflows", "apply", "--dry-run", script)
	require.NoError(t, err)
	assert.Contains(t, out, "Draft only")

	out, err = runCLI(t, apiURL, "-o", "json", "workflows", "list")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestCLI_Apply_InvalidWorkflowIsNotSent(t *testing.T) {
	apiURL := startAPI(t)

	script := filepath.Join(t.TempDir(), "nameless.yaml")
	require.NoError(t, os.WriteFile(script, []byte("operations:\n  - op: addStep\n    name: orphan\n"), 0o600))

	_, err := runCLI(t, apiURL, "workflows", "apply", script)
	require.ErrorIs(t, err, models.ErrInvalidWorkflow)
}

func TestCLI_ExecuteAndHistory(t *testing.T) {
	apiURL := startAPI(t)
	created := createFromCLI(t, apiURL)

	_, err := runCLI(t, apiURL, "execute", string(created.ID), "--input", "not json")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	out, err := runCLI(t, apiURL, "execute", string(created.ID), "--input", `{"invoice": 42}`)
	require.NoError(t, err)
	assert.Contains(t, out, "accepted (RUNNING)")

	require.Eventually(t, func() bool {
		out, err := runCLI(t, apiURL, "executions", string(created.ID))

		return err == nil && bytes.Contains([]byte(out), []byte("COMPLETED"))
	}, 5*time.Second, 20*time.Millisecond)

	out, err = runCLI(t, apiURL, "-o", "json", "overview", "--days", "3")
	require.NoError(t, err)

	var summary struct {
		TotalWorkflows  int                            `json:"totalWorkflows"`
		TotalExecutions int                            `json:"totalExecutions"`
		ByStatus        map[models.ExecutionStatus]int `json:"byStatus"`
		Trend           []json.RawMessage              `json:"trend"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.TotalWorkflows)
	assert.Equal(t, 1, summary.TotalExecutions)
	assert.Equal(t, 1, summary.ByStatus[models.ExecutionStatusCompleted])
	assert.Len(t, summary.Trend, 3)
}

func TestCLI_Delete(t *testing.T) {
	apiURL := startAPI(t)
	created := createFromCLI(t, apiURL)

	out, err := runCLI(t, apiURL, "workflows", "delete", string(created.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = runCLI(t, apiURL, "workflows", "get", string(created.ID))
	require.Error(t, err)
}

func TestCLI_AI(t *testing.T) {
	apiURL := startAPI(t)

	out, err := runCLI(t, apiURL, "ai", "process", "--prompt", "summarize", "--context", `{"region": "emea"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Result:")

	out, err = runCLI(t, apiURL, "ai", "analyze", "--data", "q1: 10", "--type", "risk")
	require.NoError(t, err)
	assert.Contains(t, out, "MEDIUM")

	out, err = runCLI(t, apiURL, "ai", "decide", "--scenario", "expand")
	require.NoError(t, err)
	assert.Contains(t, out, "Decision:")

	_, err = runCLI(t, apiURL, "ai", "analyze", "--data", "q1", "--type", "astrology")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCLI_MissingArgument(t *testing.T) {
	_, err := runCLI(t, "http://127.0.0.1:1/api", "executions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow-id")
}

func TestCLI_UnknownOutputFormat(t *testing.T) {
	_, err := runCLI(t, "http://127.0.0.1:1/api", "-o", "xml", "workflows", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
