package web

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/workflow.json
var workflowSchemaDocument []byte

var workflowSchema = mustCompileSchema(workflowSchemaDocument)

func mustCompileSchema(document []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		panic(fmt.Errorf("invalid embedded JSON schema: %w", err))
	}

	return schema
}

// validateWorkflowBody checks a raw workflow body against the embedded schema
// and returns every violation joined in a single message.
func validateWorkflowBody(body []byte) error {
	result, err := workflowSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("body is not valid JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, violation.String())
	}

	return fmt.Errorf("body does not match the workflow schema: %s", strings.Join(violations, "; "))
}
