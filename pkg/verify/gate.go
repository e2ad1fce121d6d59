package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/null-create/mcp-guard/pkg/mcp"
	"github.com/null-create/mcp-guard/pkg/validate"

	"github.com/google/uuid"
	"github.com/null-create/logger"
)

// ErrSecurityViolation is returned when a tool's current definition fails
// verification against its baseline. The invocation must be aborted
// entirely: a tampered definition is never executed.
var ErrSecurityViolation = errors.New("security violation: tool definition failed integrity verification")

// ToolInvoker dispatches a verified tool call over the caller's transport.
type ToolInvoker func(ctx context.Context, call mcp.ToolCall) (string, error)

// Gate is the mandatory pre-invocation check: every dispatch first
// verifies the tool's current definition and then validates the call
// arguments against its input schema.
//
// Trust-on-first-use means the very first call against a brand-new tool is
// necessarily unguarded against tampering that happened before that call.
// That gap is accepted and documented, not patched here.
type Gate struct {
	verifier *Verifier
	invoke   ToolInvoker
	log      *logger.Logger
}

// NewGate wraps an invoker with verification gating.
func NewGate(verifier *Verifier, invoke ToolInvoker) *Gate {
	return &Gate{
		verifier: verifier,
		invoke:   invoke,
		log:      logger.NewLogger("GATE", uuid.NewString()),
	}
}

// Dispatch verifies def against its baseline and, only on a valid verdict,
// validates and forwards the call. The returned status distinguishes a
// blocked dispatch from a failed execution.
func (g *Gate) Dispatch(ctx context.Context, serverPath, serverVersion string, def mcp.ToolDefinition, call mcp.ToolCall) (string, mcp.ExecutionStatus, error) {
	result, err := g.verifier.Verify(ctx, serverPath, serverVersion, def)
	if err != nil {
		return "", mcp.StatusBlocked, err
	}

	if !result.Valid {
		g.log.Info("SECURITY ALERT blocked call to tool '%s': definition changed (had %s, got %s)",
			def.Name, result.PreviousFingerprint, result.CurrentFingerprint)
		return "", mcp.StatusBlocked, fmt.Errorf(
			"%w: tool '%s' changed after baseline (had %s, got %s)",
			ErrSecurityViolation, def.Name,
			result.PreviousFingerprint, result.CurrentFingerprint)
	}

	if err := validate.ToolArguments(def, call); err != nil {
		return "", mcp.StatusBlocked, err
	}

	out, err := g.invoke(ctx, call)
	if err != nil {
		return out, mcp.StatusFailed, err
	}
	return out, mcp.StatusSucceeded, nil
}
