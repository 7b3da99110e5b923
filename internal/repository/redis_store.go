package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kosench/shortlink/internal/cache"
	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

// Each link is a hash at link:<code>. The scripts keep existence check and write in one
// server-side step.
var (
	putIfAbsentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'short_code', ARGV[1], 'long_url', ARGV[2], 'created_at', ARGV[3], 'click_count', ARGV[4])
return 1
`)

	incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
`)
)

type RedisLinkStore struct {
	client *redis.Client
	keys   *cache.KeyBuilder
}

var _ LinkStore = (*RedisLinkStore)(nil)

func NewRedisLinkStore(client *redis.Client, namespace string) *RedisLinkStore {
	return &RedisLinkStore{
		client: client,
		keys:   cache.NewKeyBuilder(namespace),
	}
}

func (r *RedisLinkStore) PutIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	inserted, err := putIfAbsentScript.Run(
		ctx,
		r.client,
		[]string{r.keys.Link(link.ShortCode)},
		link.ShortCode,
		link.LongURL,
		link.CreatedAt.UTC().Format(time.RFC3339Nano),
		link.ClickCount,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to insert link: %w", err)
	}

	return inserted == 1, nil
}

func (r *RedisLinkStore) Get(ctx context.Context, shortCode string) (*model.Link, error) {
	fields, err := r.client.HGetAll(ctx, r.keys.Link(shortCode)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of '%s': %w", shortCode, err)
	}

	clickCount, err := strconv.ParseInt(fields["click_count"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse click_count of '%s': %w", shortCode, err)
	}

	return &model.Link{
		ShortCode:  fields["short_code"],
		LongURL:    fields["long_url"],
		CreatedAt:  createdAt,
		ClickCount: clickCount,
	}, nil
}

func (r *RedisLinkStore) IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error {
	if err := checkCounter(field, delta); err != nil {
		return err
	}

	err := incrementScript.Run(ctx, r.client, []string{r.keys.Link(shortCode)}, field, delta).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	return nil
}
