package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

const keyPrefix = "tawkr:session:"

// RedisStore keeps sessions as JSON values that expire with the session.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Create(ctx context.Context, sess utils.SessionData) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return domain.NewInvalidArgumentError("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return domain.NewInternalError(err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.SessionID, data, ttl).Err(); err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}

func (s *RedisStore) FindSessionByID(ctx context.Context, id string) (utils.SessionData, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return utils.SessionData{}, domain.NewNotFoundError("session")
	}
	if err != nil {
		return utils.SessionData{}, domain.NewInternalError(err)
	}

	var sess utils.SessionData
	if err := json.Unmarshal(data, &sess); err != nil {
		return utils.SessionData{}, domain.NewInternalError(err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return domain.NewInternalError(err)
	}
	if n == 0 {
		return domain.NewNotFoundError("session")
	}
	return nil
}
