package popularity

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalog-search/internal/domain"
)

// DefaultRedisKey is the sorted set holding query counters.
const DefaultRedisKey = "search:popular"

// Redis is a Tracker backed by a Redis sorted set, shared by every
// replica of the service. Queries with equal counts are ordered by
// reverse lexicographic member order, as ZREVRANGE returns them.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis creates a Redis-backed tracker. An empty key selects
// DefaultRedisKey.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Record increments the score of q.
func (r *Redis) Record(ctx context.Context, q string) error {
	q = Normalize(q)
	if q == "" {
		return nil
	}

	if err := r.client.ZIncrBy(ctx, r.key, 1, q).Err(); err != nil {
		return fmt.Errorf("redis zincrby popular query: %w", err)
	}
	return nil
}

// Top returns the n highest scored queries.
func (r *Redis) Top(ctx context.Context, n int) ([]domain.PopularQuery, error) {
	if n <= 0 {
		return []domain.PopularQuery{}, nil
	}

	zs, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange popular queries: %w", err)
	}

	out := make([]domain.PopularQuery, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok || strings.TrimSpace(member) == "" {
			continue
		}
		out = append(out, domain.PopularQuery{Query: member, Count: int64(z.Score)})
	}
	return out, nil
}

// Clear deletes the sorted set.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del popular queries: %w", err)
	}
	return nil
}
