package baseline

import (
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/null-create/mcp-guard/pkg/mcp"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() map[string]FingerprintRecord {
	rec := FingerprintRecord{
		ServerPath:    "localhost:13000",
		ServerVersion: "1.0.0",
		ToolName:      "test-tool",
		Hash:          "deadbeef",
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ToolDefinition: mcp.ToolDefinition{
			Name:        "test-tool",
			Description: "A test tool",
		},
	}
	return map[string]FingerprintRecord{rec.Key(): rec}
}

func TestMemoryStoreEmptyLoad(t *testing.T) {
	store := NewMemoryStore()

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	want := sampleRecords()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded records mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleRecords()))

	first, err := store.Load(ctx)
	require.NoError(t, err)
	for k := range first {
		delete(first, k)
	}

	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx)
	assert.True(t, IsStorageError(err))

	err = store.Save(ctx, sampleRecords())
	assert.True(t, IsStorageError(err))

	// A cancelled save must leave the store unmodified.
	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "baselines.json"))

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baselines.json")
	store := NewFileStore(path)
	ctx := context.Background()

	want := sampleRecords()
	require.NoError(t, store.Save(ctx, want))

	// A fresh store over the same file sees the same records.
	got, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded records mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baselines.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.True(t, IsStorageError(err))
}

func TestSealedFileStoreRoundTrip(t *testing.T) {
	encKey := make([]byte, 32)
	sigKey := make([]byte, 32)
	_, err := rand.Read(encKey)
	require.NoError(t, err)
	_, err = rand.Read(sigKey)
	require.NoError(t, err)

	sealer, err := NewSealer(encKey, sigKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "baselines.sealed")
	store := NewSealedFileStore(path, sealer)
	ctx := context.Background()

	want := sampleRecords()
	require.NoError(t, store.Save(ctx, want))

	// Plain JSON never hits disk.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "test-tool")

	got, err := store.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded records mismatch (-want +got):\n%s", diff)
	}
}

func TestSealedFileStoreDetectsTampering(t *testing.T) {
	encKey := make([]byte, 32)
	sigKey := make([]byte, 32)
	_, _ = rand.Read(encKey)
	_, _ = rand.Read(sigKey)

	sealer, err := NewSealer(encKey, sigKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "baselines.sealed")
	store := NewSealedFileStore(path, sealer)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleRecords()))

	// Flip a byte in the middle of the sealed document.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)/2] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = store.Load(ctx)
	assert.Error(t, err)
	assert.True(t, IsStorageError(err))
}

func TestSealerRejectsShortKeys(t *testing.T) {
	_, err := NewSealer(make([]byte, 16), make([]byte, 32))
	assert.ErrorIs(t, err, ErrSealKeySize)

	_, err = NewSealer(make([]byte, 32), nil)
	assert.ErrorIs(t, err, ErrSealKeySize)
}

func TestSealerWrongSigningKey(t *testing.T) {
	encKey := make([]byte, 32)
	_, _ = rand.Read(encKey)

	sealer, err := NewSealer(encKey, make([]byte, 32))
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte(`{"hello":"world"}`))
	require.NoError(t, err)

	otherKey := make([]byte, 32)
	_, _ = rand.Read(otherKey)
	other, err := NewSealer(encKey, otherKey)
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrSealAuthentication)
}
