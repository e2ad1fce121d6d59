package mcp

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDefinition is returned when a tool definition is missing
// its required name. Nothing is hashed or stored for such a definition.
var ErrMalformedDefinition = errors.New("malformed tool definition: missing required name")

// Fingerprint derives a stable SHA-256 digest from a tool definition.
//
// The definition is serialized in a canonical form first: top-level fields
// always appear in declared order (name, title, description, inputSchema)
// and the input schema is re-encoded with sorted keys at every nesting
// level, so two structurally equal definitions hash identically regardless
// of how their JSON was originally ordered. An absent schema is omitted
// entirely and therefore hashes differently from any real schema value,
// including the empty object.
//
// The result is a lowercase 64-character hex string.
func Fingerprint(tool ToolDefinition) (string, error) {
	canonical, err := Canonicalize(tool)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Canonicalize returns the deterministic serialized form of a tool
// definition that Fingerprint hashes. Exposed so callers can audit exactly
// what was fingerprinted.
func Canonicalize(tool ToolDefinition) ([]byte, error) {
	if tool.Name == "" {
		return nil, ErrMalformedDefinition
	}

	normalized := tool
	if len(tool.InputSchema) > 0 {
		schema, err := canonicalizeJSON(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize input schema for tool '%s': %w", tool.Name, err)
		}
		normalized.InputSchema = schema
	}

	// Struct field order fixes the top-level key order in the output.
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(normalized); err != nil {
		return nil, fmt.Errorf("failed to serialize tool '%s': %w", tool.Name, err)
	}
	return buf.Bytes(), nil
}

// canonicalizeJSON re-encodes arbitrary JSON into a canonical form.
// Decoding into any turns objects into maps, which encoding/json marshals
// with sorted keys, recursively.
func canonicalizeJSON(data json.RawMessage) (json.RawMessage, error) {
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	canonical, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return canonical, nil
}
