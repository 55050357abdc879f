package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "ecoclick:"

const maxModifyRetries = 16

// nextIDScript raises the counter to at least ARGV[1] and then increments it.
var nextIDScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if floor > current then current = floor end
current = current + 1
redis.call('SET', KEYS[1], current)
return current
`)

// RecordStore keeps each collection as one string key.
// Collection documents: SET {prefix}collection:{name} <json>
// Id counters:          SET {prefix}counter:{name} <int>
type RecordStore struct {
	client *redis.Client
	prefix string
}

func NewRecordStore(client *redis.Client, prefix string) *RecordStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RecordStore{client: client, prefix: prefix}
}

func (s *RecordStore) Load(ctx context.Context, collection string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.collectionKey(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", collection, err)
	}
	return data, nil
}

func (s *RecordStore) Save(ctx context.Context, collection string, data []byte) error {
	if err := s.client.Set(ctx, s.collectionKey(collection), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", collection, err)
	}
	return nil
}

// Modify uses WATCH/MULTI so concurrent writers (in any process) retry instead of overwriting.
func (s *RecordStore) Modify(ctx context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	key := s.collectionKey(collection)
	for attempt := 0; attempt < maxModifyRetries; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				current, err = nil, nil
			}
			if err != nil {
				return fmt.Errorf("redis get %s: %w", collection, err)
			}

			next, err := fn(current)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, next, 0)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis modify %s: gave up after %d conflicting writes", collection, maxModifyRetries)
}

func (s *RecordStore) NextID(ctx context.Context, collection string, floor int64) (int64, error) {
	id, err := nextIDScript.Run(ctx, s.client, []string{s.counterKey(collection)}, floor).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis next id %s: %w", collection, err)
	}
	return id, nil
}

func (s *RecordStore) collectionKey(collection string) string {
	return s.prefix + "collection:" + collection
}

func (s *RecordStore) counterKey(collection string) string {
	return s.prefix + "counter:" + collection
}
