package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

type redisPreferenceRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisPreferenceRepository stores each preference under
// "<prefix>:<scope>:<key>". A nil client yields a repository that reports
// ErrPreferenceStoreUnavailable.
func NewRedisPreferenceRepository(client *redis.Client, prefix string) PreferenceRepository {
	return &redisPreferenceRepository{client: client, prefix: strings.TrimSuffix(prefix, ":")}
}

func (r *redisPreferenceRepository) key(scope, key string) string {
	if r.prefix == "" {
		return scope + ":" + key
	}
	return r.prefix + ":" + scope + ":" + key
}

func (r *redisPreferenceRepository) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, ErrPreferenceStoreUnavailable
	}
	value, err := r.client.Get(ctx, r.key(scope, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *redisPreferenceRepository) Set(ctx context.Context, scope, key, value string) error {
	if r.client == nil {
		return ErrPreferenceStoreUnavailable
	}
	return r.client.Set(ctx, r.key(scope, key), value, 0).Err()
}

func (r *redisPreferenceRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return ErrPreferenceStoreUnavailable
	}
	return r.client.Ping(ctx).Err()
}
