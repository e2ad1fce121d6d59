package mcp

import "encoding/json"

// ToolDefinition is the declared shape of a callable capability as advertised
// by a remote MCP server. It is treated as an immutable value; equality for
// integrity purposes is structural (see Fingerprint).
type ToolDefinition struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ToolCall is a request to invoke a named tool with JSON-encoded arguments.
type ToolCall struct {
	ID           string          `json:"id,omitempty"`
	FunctionName string          `json:"function_name"`
	Arguments    json.RawMessage `json:"arguments"`
}

// ToolSet is an advertised collection of tool definitions from one server,
// as delivered by a tools/list exchange.
type ToolSet struct {
	ServerPath    string           `json:"serverPath"`
	ServerVersion string           `json:"serverVersion"`
	Tools         []ToolDefinition `json:"tools"`
}

// ExecutionStatus indicates the outcome of a gated tool invocation attempt.
type ExecutionStatus string

const (
	StatusSucceeded ExecutionStatus = "succeeded"
	StatusFailed    ExecutionStatus = "failed"  // tool was invoked but produced an error
	StatusBlocked   ExecutionStatus = "blocked" // invocation refused before dispatch
)
