package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "medsupply:"

// RedisStore keeps each collection in one Redis hash; fields are document keys
// and values are JSON documents.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis creates a lazily connecting store for addr. A timeout of zero
// keeps the go-redis defaults.
func OpenRedis(addr string, timeout time.Duration) *RedisStore {
	opts := &redis.Options{Addr: addr}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	return NewRedisStore(redis.NewClient(opts))
}

func hashKey(collection string) string {
	return redisKeyPrefix + collection
}

func (s *RedisStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	raw, err := s.client.HGetAll(ctx, hashKey(collection)).Result()
	if err != nil {
		return nil, mapRedisError(err)
	}

	// A value that is not a JSON object comes back with nil Data; decoders
	// reject such documents one by one.
	docs := make([]Document, 0, len(raw))
	for k, v := range raw {
		data, _ := unmarshalDocument(v)
		docs = append(docs, Document{Key: k, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

func (s *RedisStore) GetByKey(ctx context.Context, collection, key string) (*Document, error) {
	v, err := s.client.HGet(ctx, hashKey(collection), key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRedisError(err)
	}
	data, err := unmarshalDocument(v)
	if err != nil {
		return nil, fmt.Errorf("document %s/%s: %w", collection, key, err)
	}
	return &Document{Key: key, Data: data}, nil
}

func (s *RedisStore) Upsert(ctx context.Context, collection, key string, data map[string]any) error {
	return s.CommitBatch(ctx, collection, []Write{{Key: key, Data: data}})
}

func (s *RedisStore) DeleteByKey(ctx context.Context, collection, key string) error {
	return mapRedisError(s.client.HDel(ctx, hashKey(collection), key).Err())
}

// CommitBatch writes all documents inside one MULTI/EXEC transaction.
func (s *RedisStore) CommitBatch(ctx context.Context, collection string, writes []Write) error {
	if err := checkBatch(writes); err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	now, err := s.client.Time(ctx).Result()
	if err != nil {
		return mapRedisError(err)
	}

	values := make([]any, 0, len(writes)*2)
	for _, w := range writes {
		b, err := json.Marshal(common.ResolveServerTimestamps(w.Data, now))
		if err != nil {
			return fmt.Errorf("%w: document %s: %v", common.ErrValidation, w.Key, err)
		}
		values = append(values, w.Key, string(b))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hashKey(collection), values...)
		return nil
	})
	return mapRedisError(err)
}

func (s *RedisStore) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.client.HLen(ctx, hashKey(collection)).Result()
	if err != nil {
		return 0, mapRedisError(err)
	}
	return int(n), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return mapRedisError(s.client.Ping(ctx).Err())
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func unmarshalDocument(v string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(v), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return data, nil
}

func mapRedisError(err error) error {
	if err == nil {
		return nil
	}
	if IsOffline(err) || errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("redis error: %w", err)
}
