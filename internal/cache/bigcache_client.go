package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/allegro/bigcache"
)

var _ Cache = (*BigCacheClient)(nil)

// BigCacheClient is an in-process Cache. Entries share one life window, so the
// per-call TTL of SetWithTTL is ignored.
type BigCacheClient struct {
	cache *bigcache.BigCache
}

func NewBigCacheClient(lifeWindow time.Duration) (*BigCacheClient, error) {
	if lifeWindow <= 0 {
		lifeWindow = 10 * time.Minute
	}

	bc, err := bigcache.NewBigCache(bigcache.Config{
		Shards:             64,
		LifeWindow:         lifeWindow,
		CleanWindow:        lifeWindow / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       500,
		HardMaxCacheSize:   256, // MB
		Verbose:            false,
	})
	if err != nil {
		return nil, NewCacheError("connect", "", err)
	}

	return &BigCacheClient{cache: bc}, nil
}

func (b *BigCacheClient) Set(ctx context.Context, key string, value interface{}) error {
	if key == "" {
		return NewCacheError("set", key, ErrInvalidCacheKey)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return NewCacheError("set", key, fmt.Errorf("failed to marshal value: %w", err))
	}

	if err := b.cache.Set(key, data); err != nil {
		return NewCacheError("set", key, err)
	}
	return nil
}

func (b *BigCacheClient) SetWithTTL(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	return b.Set(ctx, key, value)
}

// Get treats every lookup failure as a miss; bigcache only fails reads for absent entries.
func (b *BigCacheClient) Get(ctx context.Context, key string, dest interface{}) error {
	if key == "" {
		return NewCacheError("get", key, ErrInvalidCacheKey)
	}

	data, err := b.cache.Get(key)
	if err != nil {
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return NewCacheError("get", key, fmt.Errorf("failed to unmarshal value: %w", err))
	}
	return nil
}

func (b *BigCacheClient) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if key == "" {
			continue
		}
		// Deleting an absent entry is not an error for callers.
		_ = b.cache.Delete(key)
	}
	return nil
}

func (b *BigCacheClient) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, NewCacheError("exists", key, ErrInvalidCacheKey)
	}
	_, err := b.cache.Get(key)
	return err == nil, nil
}

func (b *BigCacheClient) HealthCheck(ctx context.Context) error {
	return nil
}

func (b *BigCacheClient) Close() error {
	if err := b.cache.Close(); err != nil {
		return NewCacheError("close", "", err)
	}
	return nil
}
