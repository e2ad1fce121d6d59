// Package codec holds the JSON-RPC 2.0 message shapes this service
// exchanges with MCP transports.
package codec

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Supported JSON-RPC version
const JSONRPCVersion string = "2.0"

// Method of the MCP notification signalling that a server's advertised
// tool set may have changed. The notification is only a trigger: any
// payload it carries is untrusted and ignored.
const ToolListChangedMethod = "notifications/tools/list_changed"

// JSON-RPC 2.0 standard error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

var rpcErrorMessages = map[int]string{
	ParseError:     "Parse error",
	InvalidRequest: "Invalid Request",
	MethodNotFound: "Method not found",
	InvalidParams:  "Invalid params",
	InternalError:  "Internal error",
}

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      int64           `json:"id"`
}

type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string { return e.Message }

// Notification is a JSON-RPC message without an ID: no response is
// expected.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsToolListChanged reports whether this notification signals a possible
// tool-set change.
func (n Notification) IsToolListChanged() bool {
	return n.Method == ToolListChangedMethod
}

// ParseNotification decodes and minimally validates an inbound JSON-RPC
// notification from an HTTP request body.
func ParseNotification(r *http.Request) (*Notification, error) {
	var n Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		return nil, err
	}
	if n.JSONRPC != JSONRPCVersion {
		return nil, errors.New("invalid jsonrpc version")
	}
	if n.Method == "" {
		return nil, errors.New("missing method")
	}
	return &n, nil
}

// WriteJSONRPCError writes a standard JSON-RPC error response. An empty
// message falls back to the standard text for the code.
func WriteJSONRPCError(w http.ResponseWriter, code int, message string, id int64) error {
	if message == "" {
		message = rpcErrorMessages[code]
	}
	resp := JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}
