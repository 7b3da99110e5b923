package repository

import (
	"context"
	"errors"
	"log"

	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/model"
)

// CachedLinkStore - декоратор LinkStore с кэшированием чтений.
// Writes always go to the primary store first; a cached entry is dropped whenever its
// counter changes, so the primary stays the only source of truth for click_count.
type CachedLinkStore struct {
	primary LinkStore
	cache   cache.Cache
	keys    *cache.KeyBuilder
	logger  *log.Logger
}

var _ LinkStore = (*CachedLinkStore)(nil)

// NewCachedLinkStore prefixes cache keys with namespace, so deployments sharing one Redis
// keep separate entries.
func NewCachedLinkStore(primary LinkStore, c cache.Cache, namespace string, logger *log.Logger) *CachedLinkStore {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedLinkStore{
		primary: primary,
		cache:   c,
		keys:    cache.NewKeyBuilder(namespace),
		logger:  logger,
	}
}

func (r *CachedLinkStore) PutIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	inserted, err := r.primary.PutIfAbsent(ctx, link)
	if err != nil || !inserted {
		return inserted, err
	}

	// Ошибка кэша не прерывает операцию
	if err := r.cache.Set(ctx, r.keys.CachedLink(link.ShortCode), link); err != nil {
		r.logger.Printf("Failed to cache link %s: %v", link.ShortCode, err)
	}

	return true, nil
}

func (r *CachedLinkStore) Get(ctx context.Context, shortCode string) (*model.Link, error) {
	cacheKey := r.keys.CachedLink(shortCode)

	var cached model.Link
	err := r.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		return &cached, nil
	}

	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Printf("Cache error: %v", err)
	}

	link, err := r.primary.Get(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, link); err != nil {
		r.logger.Printf("Failed to cache link %s: %v", shortCode, err)
	}

	return link, nil
}

func (r *CachedLinkStore) IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error {
	if err := r.primary.IncrementCounter(ctx, shortCode, field, delta); err != nil {
		return err
	}

	// Инвалидируем кэш, чтобы следующее чтение получило актуальный click_count
	if err := r.cache.Delete(ctx, r.keys.CachedLink(shortCode)); err != nil {
		r.logger.Printf("Failed to invalidate cached link %s: %v", shortCode, err)
	}

	return nil
}
