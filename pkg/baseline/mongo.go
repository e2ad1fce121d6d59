package baseline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// baselineDocument is the MongoDB document shape: one document per storage
// key, with the record carried as its canonical JSON encoding so the
// persisted bytes match the file-store layout exactly.
type baselineDocument struct {
	ID      string    `bson:"_id"`
	Payload []byte    `bson:"payload"`
	Updated time.Time `bson:"updated"`
}

// MongoStore persists baselines in a MongoDB collection. Save replaces the
// full set; the store-level mutex serializes writers within this process,
// and cross-process writers fall under the interface's last-writer-wins
// contract.
type MongoStore struct {
	mu         sync.Mutex
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings to ensure the connection is
// live before returning.
func NewMongoStore(ctx context.Context, uri, dbName, collectionName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(collectionName),
	}, nil
}

func (ms *MongoStore) Load(ctx context.Context) (map[string]FingerprintRecord, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cursor, err := ms.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, loadError(err)
	}
	defer cursor.Close(ctx)

	var docs []baselineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, loadError(err)
	}

	records := make(map[string]FingerprintRecord, len(docs))
	for _, doc := range docs {
		var rec FingerprintRecord
		if err := json.Unmarshal(doc.Payload, &rec); err != nil {
			return nil, loadError(err)
		}
		records[doc.ID] = rec
	}
	return records, nil
}

func (ms *MongoStore) Save(ctx context.Context, records map[string]FingerprintRecord) error {
	docs := make([]interface{}, 0, len(records))
	now := time.Now().UTC()
	for key, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return saveError(err)
		}
		docs = append(docs, baselineDocument{ID: key, Payload: payload, Updated: now})
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, err := ms.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return saveError(err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := ms.collection.InsertMany(ctx, docs); err != nil {
		return saveError(err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}
