package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "session:v1:"

// ErrSessionNotFound is returned for unknown or closed session tokens.
var ErrSessionNotFound = errors.New("session not found")

// Repository maps session tokens to usernames. Tokens never expire; they
// live until Delete.
type Repository interface {
	Save(ctx context.Context, token, username string) error
	Find(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// RedisRepository keeps session tokens in Redis.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository builds a Redis-backed token repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Save stores the token without expiry.
func (r *RedisRepository) Save(ctx context.Context, token, username string) error {
	return r.client.Set(ctx, tokenPrefix+token, username, 0).Err()
}

// Find resolves a token to its username.
func (r *RedisRepository) Find(ctx context.Context, token string) (string, error) {
	username, err := r.client.Get(ctx, tokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return username, err
}

// Delete removes the token. Deleting an unknown token is not an error.
func (r *RedisRepository) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, tokenPrefix+token).Err()
}
