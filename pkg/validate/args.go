package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/null-create/mcp-guard/pkg/mcp"

	"github.com/xeipuuv/gojsonschema"
)

// ErrArgumentsRejected indicates tool-call arguments failed schema
// validation against the tool's declared input schema.
var ErrArgumentsRejected = errors.New("tool arguments rejected by input schema")

// ToolArguments validates a tool call's arguments against the verified
// definition's input schema. A definition without a schema passes: the
// protocol makes inputSchema optional, so absence is not an error here.
func ToolArguments(def mcp.ToolDefinition, call mcp.ToolCall) error {
	if len(def.InputSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewBytesLoader(def.InputSchema)
	documentLoader := gojsonschema.NewBytesLoader(call.Arguments)

	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return fmt.Errorf("internal schema error for tool '%s': %w", def.Name, err)
	}

	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("internal validation error for tool '%s': %w", def.Name, err)
	}

	if !result.Valid() {
		var validationErrors []string
		for _, desc := range result.Errors() {
			validationErrors = append(validationErrors, fmt.Sprintf("- %s", desc))
		}
		return fmt.Errorf("%w: tool '%s':\n%s",
			ErrArgumentsRejected, def.Name, strings.Join(validationErrors, "\n"))
	}
	return nil
}

// ToolDescription scans the definition's descriptive text for hidden
// characters and returns an error naming the findings when any exist.
func ToolDescription(def mcp.ToolDefinition) error {
	detections := DetectHiddenUnicode(def.Description)
	if len(detections) == 0 {
		return nil
	}
	return fmt.Errorf("%d hidden characters detected in description of tool '%s'",
		len(detections), def.Name)
}
