package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records access tokens revoked before they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisTokenDenylist struct {
	redis *redis.Client
}

func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{redis: client}
}

func revokedKey(tokenID string) string { return "revoked_jti:" + tokenID }

// Revoke keeps the entry only as long as the token could still be presented.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.redis.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NopTokenDenylist is used when no Redis is configured; nothing is ever revoked.
type NopTokenDenylist struct{}

func (NopTokenDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopTokenDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
