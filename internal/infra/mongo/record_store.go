package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoclick-api/internal/infra/lock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionsName = "record_collections"
	countersName    = "record_counters"
)

const maxModifyRetries = 16

type collectionDoc struct {
	Name      string    `bson:"_id"`
	Data      string    `bson:"data"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type counterDoc struct {
	Collection string `bson:"_id"`
	Value      int64  `bson:"value"`
}

// RecordStore keeps each collection as one document holding the JSON text.
// Modify is an optimistic read-modify-write on the document version, so writers in other
// processes retry instead of overwriting. NextID is a single findOneAndUpdate.
type RecordStore struct {
	client      *mongo.Client
	collections *mongo.Collection
	counters    *mongo.Collection
	locks       lock.Keyed
}

// Connect dials MongoDB and pings it before returning the store.
func Connect(ctx context.Context, uri, database string) (*RecordStore, error) {
	if uri == "" {
		return nil, errors.New("mongo store: uri not configured")
	}
	if database == "" {
		database = "ecoclick"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewRecordStore(client, client.Database(database)), nil
}

func NewRecordStore(client *mongo.Client, db *mongo.Database) *RecordStore {
	return &RecordStore{
		client:      client,
		collections: db.Collection(collectionsName),
		counters:    db.Collection(countersName),
	}
}

func (s *RecordStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *RecordStore) Load(ctx context.Context, collection string) ([]byte, error) {
	doc, err := s.find(ctx, collection)
	if err != nil || doc == nil {
		return nil, err
	}
	return []byte(doc.Data), nil
}

func (s *RecordStore) Save(ctx context.Context, collection string, data []byte) error {
	_, err := s.collections.UpdateOne(ctx,
		bson.M{"_id": collection},
		bson.M{
			"$set": bson.M{"data": string(data), "updatedAt": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

// Modify retries when another writer changed the document between the read and the write.
// The keyed lock only cuts down on retries between goroutines of this process.
func (s *RecordStore) Modify(ctx context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	unlock := s.locks.Lock(collection)
	defer unlock()

	for attempt := 0; attempt < maxModifyRetries; attempt++ {
		doc, err := s.find(ctx, collection)
		if err != nil {
			return err
		}
		var current []byte
		if doc != nil {
			current = []byte(doc.Data)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}

		written, err := s.writeIfUnchanged(ctx, collection, doc, next)
		if err != nil {
			return err
		}
		if written {
			return nil
		}
	}
	return fmt.Errorf("mongo modify %s: gave up after %d conflicting writes", collection, maxModifyRetries)
}

// NextID raises the counter to at least floor and increments it in one atomic update.
func (s *RecordStore) NextID(ctx context.Context, collection string, floor int64) (int64, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"value": bson.M{"$add": bson.A{
				bson.M{"$max": bson.A{bson.M{"$ifNull": bson.A{"$value", int64(0)}}, floor}},
				int64(1),
			}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc counterDoc
	var err error
	// two first-time upserts can race on the _id index; the loser retries as an update
	for attempt := 0; attempt < 2; attempt++ {
		err = s.counters.FindOneAndUpdate(ctx, bson.M{"_id": collection}, update, opts).Decode(&doc)
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("next id %s: %w", collection, err)
	}
	return doc.Value, nil
}

func (s *RecordStore) find(ctx context.Context, collection string) (*collectionDoc, error) {
	var doc collectionDoc
	err := s.collections.FindOne(ctx, bson.M{"_id": collection}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return &doc, nil
}

// writeIfUnchanged stores data when the document is still at the version that was read.
// A nil prev means the document did not exist, so the write is an insert.
func (s *RecordStore) writeIfUnchanged(ctx context.Context, collection string, prev *collectionDoc, data []byte) (bool, error) {
	now := time.Now().UTC()
	if prev == nil {
		_, err := s.collections.InsertOne(ctx, collectionDoc{Name: collection, Data: string(data), Version: 1, UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("save %s: %w", collection, err)
		}
		return true, nil
	}

	version := any(prev.Version)
	if prev.Version == 0 {
		// documents written before versioning have no version field
		version = bson.M{"$in": bson.A{int64(0), nil}}
	}
	res, err := s.collections.UpdateOne(ctx,
		bson.M{"_id": collection, "version": version},
		bson.M{"$set": bson.M{"data": string(data), "version": prev.Version + 1, "updatedAt": now}},
	)
	if err != nil {
		return false, fmt.Errorf("save %s: %w", collection, err)
	}
	return res.MatchedCount == 1, nil
}
