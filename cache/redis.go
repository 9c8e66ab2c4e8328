package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level failures from the document
// backend.
var ErrRedisUnavailable = errors.New("cache redis unavailable")

type redisBackend struct {
	client redis.UniversalClient
	prefix string
}

func newRedisBackend(client redis.UniversalClient, prefix string) *redisBackend {
	return &redisBackend{client: client, prefix: prefix}
}

func (b *redisBackend) key(playerID string) string {
	return b.prefix + ":player:" + playerID
}

func (b *redisBackend) get(ctx context.Context, playerID string) (string, bool, error) {
	v, err := b.client.Get(ctx, b.key(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return v, true, nil
}

func (b *redisBackend) put(ctx context.Context, playerID, username string) error {
	// SetNX keeps the store first-write-wins: concurrent resolvers cannot
	// flap a stored username. No TTL; entries live for the cache lifetime.
	if err := b.client.SetNX(ctx, b.key(playerID), username, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (b *redisBackend) entries(ctx context.Context) ([]Entry, error) {
	pattern := b.prefix + ":player:*"
	keyPrefix := b.prefix + ":player:"

	var (
		cursor uint64
		out    []Entry
	)
	for {
		keys, next, err := b.client.Scan(ctx, cursor, pattern, 512).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if len(keys) > 0 {
			vals, err := b.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
			for i, key := range keys {
				str, ok := vals[i].(string)
				if !ok {
					continue
				}
				out = append(out, Entry{
					PlayerID: strings.TrimPrefix(key, keyPrefix),
					Username: str,
				})
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}
