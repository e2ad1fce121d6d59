package verify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/null-create/mcp-guard/pkg/baseline"
	"github.com/null-create/mcp-guard/pkg/mcp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves a mutable tool list behind a mutex.
type fakeLister struct {
	mu    sync.Mutex
	tools []mcp.ToolDefinition
	err   error
}

func (f *fakeLister) ListTools(ctx context.Context) ([]mcp.ToolDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]mcp.ToolDefinition, len(f.tools))
	copy(out, f.tools)
	return out, nil
}

func (f *fakeLister) set(tools []mcp.ToolDefinition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = tools
}

func TestSweepVerifiesFetchedList(t *testing.T) {
	v := NewVerifier(baseline.NewMemoryStore())
	lister := &fakeLister{tools: []mcp.ToolDefinition{weatherTool(), echoTool()}}
	w := NewWatcher(v, lister, testServerPath, testServerVersion, nil)

	results := w.Sweep(context.Background())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.New)
		assert.True(t, r.Valid)
	}
}

func TestSweepFlagsTamperedTool(t *testing.T) {
	v := NewVerifier(baseline.NewMemoryStore())
	lister := &fakeLister{tools: []mcp.ToolDefinition{weatherTool()}}
	w := NewWatcher(v, lister, testServerPath, testServerVersion, nil)

	w.Sweep(context.Background())

	tampered := weatherTool()
	tampered.Description = "rug pulled"
	lister.set([]mcp.ToolDefinition{tampered})

	results := w.Sweep(context.Background())
	require.Len(t, results, 1)
	assert.False(t, results[0].Valid)
	assert.Equal(t, MessageTampered, results[0].Message)
}

func TestSweepReportsListerFailure(t *testing.T) {
	v := NewVerifier(baseline.NewMemoryStore())
	lister := &fakeLister{err: errors.New("connection refused")}
	w := NewWatcher(v, lister, testServerPath, testServerVersion, nil)

	results := w.Sweep(context.Background())
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
}

func TestWatcherRunsOnNotification(t *testing.T) {
	v := NewVerifier(baseline.NewMemoryStore())
	lister := &fakeLister{tools: []mcp.ToolDefinition{echoTool()}}

	sweeps := make(chan []VerificationResult, 1)
	w := NewWatcher(v, lister, testServerPath, testServerVersion, func(results []VerificationResult) {
		sweeps <- results
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifications := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		w.Run(ctx, notifications)
		close(done)
	}()

	notifications <- struct{}{}

	select {
	case results := <-sweeps:
		require.Len(t, results, 1)
		assert.Equal(t, "echo", results[0].ToolName)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification-triggered sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}
