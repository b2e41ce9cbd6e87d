package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkflowBody(t *testing.T) {
	require.NoError(t, validateWorkflowBody([]byte(invoiceWorkflow)))
	require.NoError(t, validateWorkflowBody([]byte(`{"id": 7, "name": "numeric id", "steps": null}`)))
	require.NoError(t, validateWorkflowBody([]byte(`{"name": "with status", "status": "PAUSED", "steps": [{"name": "a", "type": "CONDITIONAL", "status": "IN_PROGRESS"}]}`)))

	err := validateWorkflowBody([]byte(`{"name": 12, "status": "ARCHIVED"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "status")

	err = validateWorkflowBody([]byte(`{"name": "x", "steps": [{"name": "a", "type": "AI_PROCESSING", "stepOrder": -1}]}`))
	require.Error(t, err)

	err = validateWorkflowBody([]byte(`not json`))
	require.Error(t, err)
}
