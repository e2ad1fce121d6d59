package verify

import (
	"context"

	"github.com/null-create/mcp-guard/pkg/mcp"

	"github.com/google/uuid"
	"github.com/null-create/logger"
)

// ToolLister yields the currently advertised tool definitions for one
// peer/session. The transport behind it is not this package's concern.
type ToolLister interface {
	ListTools(ctx context.Context) ([]mcp.ToolDefinition, error)
}

// Watcher re-verifies a server's full tool set whenever a change
// notification arrives. Notifications carry no trusted payload: the
// watcher always re-fetches the tool list from the lister and runs a full
// sweep, since no ordering is guaranteed between the notification and the
// mutation it describes.
type Watcher struct {
	verifier      *Verifier
	lister        ToolLister
	serverPath    string
	serverVersion string
	onSweep       func([]VerificationResult)
	log           *logger.Logger
}

// NewWatcher builds a watcher for one peer scope. onSweep, if non-nil, is
// called with the results of every sweep.
func NewWatcher(verifier *Verifier, lister ToolLister, serverPath, serverVersion string, onSweep func([]VerificationResult)) *Watcher {
	return &Watcher{
		verifier:      verifier,
		lister:        lister,
		serverPath:    serverPath,
		serverVersion: serverVersion,
		onSweep:       onSweep,
		log:           logger.NewLogger("WATCHER", uuid.NewString()),
	}
}

// Run consumes notification triggers until ctx is cancelled or the channel
// closes. Each trigger causes one sweep; sweep errors are reported through
// per-item results, not by stopping the loop.
func (w *Watcher) Run(ctx context.Context, notifications <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notifications:
			if !ok {
				return
			}
			w.Sweep(ctx)
		}
	}
}

// Sweep re-fetches the advertised tool list and verifies every definition.
func (w *Watcher) Sweep(ctx context.Context) []VerificationResult {
	tools, err := w.lister.ListTools(ctx)
	if err != nil {
		w.log.Info("ERROR failed to fetch tool list from %s: %v", w.serverPath, err)
		results := []VerificationResult{{Error: err.Error()}}
		if w.onSweep != nil {
			w.onSweep(results)
		}
		return results
	}

	results := w.verifier.VerifyAll(ctx, w.serverPath, w.serverVersion, tools)
	for _, r := range results {
		if !r.Failed() && !r.Valid {
			w.log.Info("SECURITY ALERT: tool '%s' on %s is %s", r.ToolName, w.serverPath, r.Message)
		}
	}
	if w.onSweep != nil {
		w.onSweep(results)
	}
	return results
}
