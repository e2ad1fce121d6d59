package baseline

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// redis key holding the JSON baseline document
const redisBaselineKey = "mcpguard:baselines"

// RedisStore keeps the baseline document under a single Redis key.
// Used as an alternative to the file store when running without local
// persistent disk.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,     // e.g. "redis:6379"
		Password: password, // empty string if no password
		DB:       db,       // 0 is default
	})
	return &RedisStore{client: rdb}
}

func (r *RedisStore) Load(ctx context.Context) (map[string]FingerprintRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	val, err := r.client.Get(ctx, redisBaselineKey).Result()
	if err == redis.Nil {
		return make(map[string]FingerprintRecord), nil
	}
	if err != nil {
		return nil, loadError(err)
	}

	records := make(map[string]FingerprintRecord)
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		return nil, loadError(err)
	}
	return records, nil
}

// Save replaces the stored document. The write is a single SET, so readers
// see either the old or the new document, never a mix. No TTL: baselines
// persist until explicitly removed.
func (r *RedisStore) Save(ctx context.Context, records map[string]FingerprintRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return saveError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.Set(ctx, redisBaselineKey, data, 0).Err(); err != nil {
		return saveError(err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
