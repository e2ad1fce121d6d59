package baseline

import (
	"context"
	"errors"
	"fmt"
)

// Store is the persistence capability behind the verifier. Implementations
// map storage keys to FingerprintRecord values; the backing medium is
// swappable without touching verification logic.
//
// Save replaces the full record set and must be atomic from the caller's
// point of view: a concurrent Load never observes a partially written set.
// Each implementation serializes its own Save calls; across processes the
// contract is last-writer-wins on the full set.
type Store interface {
	// Load returns the full current record set, keyed by StorageKey.
	// An empty store yields an empty map, not an error.
	Load(ctx context.Context) (map[string]FingerprintRecord, error)

	// Save durably persists the full record set.
	Save(ctx context.Context, records map[string]FingerprintRecord) error
}

// StorageError wraps a failure to load or save baselines. The verifier
// surfaces these to its caller without retrying; retry policy belongs to
// the storage adapter or the caller.
type StorageError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("baseline store %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func loadError(err error) error { return &StorageError{Op: "load", Err: err} }
func saveError(err error) error { return &StorageError{Op: "save", Err: err} }
