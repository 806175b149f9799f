package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the JSON document when no REDIS_KEY is configured.
const DefaultRedisKey = "prontuario:db"

// RedisStore keeps the document as a single JSON string value without TTL.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Load(ctx context.Context) (*patient.Document, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptyDocument(), nil
		}
		return nil, unavailable("redis get", err)
	}
	if len(b) == 0 {
		return emptyDocument(), nil
	}
	var doc patient.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, unavailable("decode", err)
	}
	doc.Normalize()
	return &doc, nil
}

func (r *RedisStore) Save(ctx context.Context, doc *patient.Document) error {
	out := *doc
	out.Normalize()
	b, err := json.Marshal(&out)
	if err != nil {
		return unavailable("encode", err)
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return unavailable("redis set", err)
	}
	return nil
}
