// Package verify implements trust-on-first-use integrity checking for MCP
// tool definitions: fingerprints are recorded on first sight and later
// observations are compared against the stored baseline to detect
// Rug-Pull-style definition changes.
package verify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/null-create/mcp-guard/pkg/baseline"
	"github.com/null-create/mcp-guard/pkg/mcp"
	"github.com/null-create/mcp-guard/pkg/validate"

	"github.com/google/uuid"
	"github.com/null-create/logger"
)

// Verification message categories.
const (
	MessageNewTool   = "NEW_TOOL"
	MessageUnchanged = "UNCHANGED"
	MessageTampered  = "TAMPERED"
)

// VerificationResult is the verdict for one tool definition. It is
// transient: nothing here is persisted.
type VerificationResult struct {
	ToolName            string   `json:"toolName"`
	Valid               bool     `json:"isValid"`
	New                 bool     `json:"isNew"`
	PreviousFingerprint string   `json:"previousFingerprint,omitempty"`
	CurrentFingerprint  string   `json:"currentFingerprint,omitempty"`
	Message             string   `json:"message,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
	Error               string   `json:"error,omitempty"`
}

// Failed reports whether this entry represents a verification that could
// not be carried out (store I/O failure, malformed definition) rather than
// a verdict.
func (r VerificationResult) Failed() bool { return r.Error != "" }

// Verifier orchestrates the fingerprint engine and a baseline store to
// produce verification verdicts. The store is injected at construction;
// one process can hold independently-trusted verifiers over separate
// stores.
type Verifier struct {
	store baseline.Store
	mu    sync.Mutex // serializes load-modify-save cycles
	log   *logger.Logger
}

// NewVerifier creates a Verifier over the given baseline store.
func NewVerifier(store baseline.Store) *Verifier {
	return &Verifier{
		store: store,
		log:   logger.NewLogger("VERIFIER", uuid.NewString()),
	}
}

// RecordBaseline accepts the current definition as ground truth and
// overwrites any prior record for its key. This is the trusted re-baseline
// path: callers must have independently decided to trust the definition
// (first observation, or a deliberate human-approved acceptance).
func (v *Verifier) RecordBaseline(ctx context.Context, serverPath, serverVersion string, tool mcp.ToolDefinition) (baseline.FingerprintRecord, error) {
	hash, err := mcp.Fingerprint(tool)
	if err != nil {
		return baseline.FingerprintRecord{}, err
	}
	if err := baseline.ValidateKeyParts(serverPath, serverVersion, tool.Name); err != nil {
		return baseline.FingerprintRecord{}, err
	}

	record := baseline.FingerprintRecord{
		ServerPath:     serverPath,
		ServerVersion:  serverVersion,
		ToolName:       tool.Name,
		Hash:           hash,
		Timestamp:      time.Now().UTC(),
		ToolDefinition: tool,
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	records, err := v.store.Load(ctx)
	if err != nil {
		return baseline.FingerprintRecord{}, err
	}
	records[record.Key()] = record
	if err := v.store.Save(ctx, records); err != nil {
		return baseline.FingerprintRecord{}, err
	}

	v.log.Info("baseline recorded for tool '%s' (%s %s): %s",
		tool.Name, serverPath, serverVersion, hash)
	return record, nil
}

// Verify checks one definition against its stored baseline.
//
// A never-before-seen tool is accepted trust-on-first-use: its baseline is
// recorded as a side effect and the result is flagged isNew. A matching
// fingerprint is UNCHANGED. A mismatch is TAMPERED and the stored baseline
// is deliberately left untouched so the discrepancy stays auditable; the
// drifted definition can only become trusted through an explicit
// RecordBaseline call.
func (v *Verifier) Verify(ctx context.Context, serverPath, serverVersion string, tool mcp.ToolDefinition) (VerificationResult, error) {
	// Malformed definitions fail before any store interaction.
	currentHash, err := mcp.Fingerprint(tool)
	if err != nil {
		return VerificationResult{}, err
	}
	if err := baseline.ValidateKeyParts(serverPath, serverVersion, tool.Name); err != nil {
		return VerificationResult{}, err
	}

	key := baseline.StorageKey(serverPath, serverVersion, tool.Name)

	v.mu.Lock()
	defer v.mu.Unlock()

	records, err := v.store.Load(ctx)
	if err != nil {
		return VerificationResult{}, err
	}

	prior, exists := records[key]
	if !exists {
		record := baseline.FingerprintRecord{
			ServerPath:     serverPath,
			ServerVersion:  serverVersion,
			ToolName:       tool.Name,
			Hash:           currentHash,
			Timestamp:      time.Now().UTC(),
			ToolDefinition: tool,
		}
		records[key] = record
		if err := v.store.Save(ctx, records); err != nil {
			return VerificationResult{}, err
		}

		// First sight is unauthenticated: nothing here can attest the
		// definition's origin, only detect later change. Flag it loudly.
		v.log.Info("WARNING trust-on-first-use: accepted new tool '%s' (%s %s) with fingerprint %s",
			tool.Name, serverPath, serverVersion, currentHash)

		return VerificationResult{
			ToolName:           tool.Name,
			Valid:              true,
			New:                true,
			CurrentFingerprint: currentHash,
			Message:            MessageNewTool,
			Warnings:           descriptionWarnings(tool),
		}, nil
	}

	if prior.Hash == currentHash {
		return VerificationResult{
			ToolName:            tool.Name,
			Valid:               true,
			PreviousFingerprint: prior.Hash,
			CurrentFingerprint:  currentHash,
			Message:             MessageUnchanged,
		}, nil
	}

	v.log.Info("SECURITY ALERT tool '%s' (%s %s) definition changed after baseline: had %s, got %s",
		tool.Name, serverPath, serverVersion, prior.Hash, currentHash)

	return VerificationResult{
		ToolName:            tool.Name,
		Valid:               false,
		PreviousFingerprint: prior.Hash,
		CurrentFingerprint:  currentHash,
		Message:             MessageTampered,
	}, nil
}

// VerifyAll applies Verify to each definition independently. One tool's
// failure does not abort the rest: failures come back as entries with
// Error set instead of a verdict.
func (v *Verifier) VerifyAll(ctx context.Context, serverPath, serverVersion string, tools []mcp.ToolDefinition) []VerificationResult {
	results := make([]VerificationResult, 0, len(tools))
	for _, tool := range tools {
		result, err := v.Verify(ctx, serverPath, serverVersion, tool)
		if err != nil {
			results = append(results, VerificationResult{
				ToolName: tool.Name,
				Error:    err.Error(),
			})
			continue
		}
		results = append(results, result)
	}
	return results
}

// ListAll returns every stored baseline record, sorted by storage key for
// stable audit output.
func (v *Verifier) ListAll(ctx context.Context) ([]baseline.FingerprintRecord, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	records, err := v.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]baseline.FingerprintRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out, nil
}

// RemoveBaseline deletes the record for a retired tool. Baselines are never
// pruned implicitly; this is the explicit retirement path. The returned
// bool reports whether a record existed.
func (v *Verifier) RemoveBaseline(ctx context.Context, serverPath, serverVersion, toolName string) (bool, error) {
	if err := baseline.ValidateKeyParts(serverPath, serverVersion, toolName); err != nil {
		return false, err
	}
	key := baseline.StorageKey(serverPath, serverVersion, toolName)

	v.mu.Lock()
	defer v.mu.Unlock()

	records, err := v.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if _, exists := records[key]; !exists {
		return false, nil
	}
	delete(records, key)
	if err := v.store.Save(ctx, records); err != nil {
		return false, err
	}

	v.log.Info("baseline removed for key '%s'", key)
	return true, nil
}

// descriptionWarnings reports hidden-character findings in a definition
// accepted on first sight, so a poisoned description does not slip into
// the trust baseline unnoticed.
func descriptionWarnings(tool mcp.ToolDefinition) []string {
	detections := validate.DetectHiddenUnicode(tool.Description)
	if len(detections) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(detections))
	for _, d := range detections {
		warnings = append(warnings, fmt.Sprintf("hidden character %s (%s) at byte %d", d.Hex, d.Category, d.Index))
	}
	return warnings
}
