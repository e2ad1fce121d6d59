// Package baseline persists last-known-good tool fingerprints so that
// later observations of the same tool can be checked for drift.
package baseline

import (
	"errors"
	"time"

	"github.com/null-create/mcp-guard/pkg/mcp"
)

// FingerprintRecord is one persisted trust baseline: the fingerprint of a
// tool definition at the moment it was accepted, plus the full definition
// snapshot for forensic comparison. Hash is always the digest of
// ToolDefinition as computed at the time of last acceptance; the two fields
// are only ever written together.
type FingerprintRecord struct {
	ServerPath     string             `json:"serverPath"`
	ServerVersion  string             `json:"serverVersion"`
	ToolName       string             `json:"toolName"`
	Hash           string             `json:"hash"`
	Timestamp      time.Time          `json:"timestamp"`
	ToolDefinition mcp.ToolDefinition `json:"toolDefinition"`
}

// Key returns the storage key this record is filed under.
func (r FingerprintRecord) Key() string {
	return StorageKey(r.ServerPath, r.ServerVersion, r.ToolName)
}

// ErrInvalidKeyPart is returned when a storage-key component is empty.
var ErrInvalidKeyPart = errors.New("storage key components must be non-empty")

// StorageKey derives the storage key for a tool baseline. The joined
// format is fixed for interoperability with existing stored baseline
// documents.
func StorageKey(serverPath, serverVersion, toolName string) string {
	return serverPath + "-" + serverVersion + "-" + toolName
}

// ValidateKeyParts rejects key components that would produce a degenerate
// storage key. The dash-joined format itself is kept as-is (see StorageKey),
// so callers that control serverPath/serverVersion naming are responsible
// for avoiding ambiguous values.
func ValidateKeyParts(serverPath, serverVersion, toolName string) error {
	if serverPath == "" || serverVersion == "" || toolName == "" {
		return ErrInvalidKeyPart
	}
	return nil
}
