package baseline

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("baselines")

// BoltStore persists baselines in an embedded bbolt database: one bucket,
// storage key to JSON-encoded record. Suits single-binary deployments that
// want durability without an external service.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) the bbolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Load(ctx context.Context) (map[string]FingerprintRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError(err)
	}

	records := make(map[string]FingerprintRecord)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var rec FingerprintRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records[string(k)] = rec
			return nil
		})
	})
	if err != nil {
		return nil, loadError(err)
	}
	return records, nil
}

// Save rewrites the bucket inside a single bbolt transaction, which gives
// the all-or-nothing replacement the Store contract requires.
func (b *BoltStore) Save(ctx context.Context, records map[string]FingerprintRecord) error {
	if err := ctx.Err(); err != nil {
		return saveError(err)
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(boltBucket) != nil {
			if err := tx.DeleteBucket(boltBucket); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(boltBucket)
		if err != nil {
			return err
		}
		for key, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return saveError(err)
	}
	return nil
}

// Close closes the underlying database file.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
