package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the baseline set as a single JSON document on disk.
// The document's top-level keys are storage keys and its values are
// FingerprintRecord objects, so files written here interoperate with other
// tooling that reads the same layout.
//
// When constructed with a Sealer the document is encrypted and signed at
// rest instead of stored as plain JSON.
type FileStore struct {
	mu     sync.Mutex
	path   string
	sealer *Sealer
}

// NewFileStore returns a store backed by the JSON file at path. The file
// is created on first Save; a missing file loads as an empty set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewSealedFileStore returns a FileStore whose document is sealed with the
// given Sealer before hitting disk.
func NewSealedFileStore(path string, sealer *Sealer) *FileStore {
	return &FileStore{path: path, sealer: sealer}
}

func (f *FileStore) Load(ctx context.Context) (map[string]FingerprintRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]FingerprintRecord), nil
	}
	if err != nil {
		return nil, loadError(err)
	}

	if f.sealer != nil {
		data, err = f.sealer.Open(data)
		if err != nil {
			return nil, loadError(err)
		}
	}

	records := make(map[string]FingerprintRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, loadError(fmt.Errorf("corrupt baseline file %s: %w", f.path, err))
	}
	return records, nil
}

// Save writes the full set to a temporary file and renames it into place,
// so readers never observe a partially written document and a cancelled
// save leaves the previous document intact.
func (f *FileStore) Save(ctx context.Context, records map[string]FingerprintRecord) error {
	if err := ctx.Err(); err != nil {
		return saveError(err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return saveError(err)
	}

	if f.sealer != nil {
		data, err = f.sealer.Seal(data)
		if err != nil {
			return saveError(err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return saveError(err)
	}

	tmp, err := os.CreateTemp(dir, ".baselines-*.tmp")
	if err != nil {
		return saveError(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return saveError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return saveError(err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return saveError(err)
	}
	return nil
}
