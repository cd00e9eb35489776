package repository

import (
	"context"
	"encoding/json"
	"errors"

	"batch-reconciliation-backend/internal/templates"

	"github.com/redis/go-redis/v9"
)

var _ templates.Store = (*RedisTemplateStore)(nil)

// RedisTemplateStore keeps each template list as a JSON string under templates:<key>.
type RedisTemplateStore struct {
	client *redis.Client
}

func NewRedisTemplateStore(client *redis.Client) *RedisTemplateStore {
	return &RedisTemplateStore{client: client}
}

func redisKey(key string) string {
	return "templates:" + key
}

func (s *RedisTemplateStore) Load(ctx context.Context, key string) ([]templates.Template, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []templates.Template{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeTemplates(data)
}

func (s *RedisTemplateStore) Save(ctx context.Context, key string, list []templates.Template) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(key), data, 0).Err()
}
