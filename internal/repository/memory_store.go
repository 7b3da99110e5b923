package repository

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

// MemoryLinkStore keeps links in process memory. Used for development and tests.
type MemoryLinkStore struct {
	mu    sync.RWMutex
	links map[string]model.Link
}

var _ LinkStore = (*MemoryLinkStore)(nil)

func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{links: make(map[string]model.Link)}
}

func (s *MemoryLinkStore) PutIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.ShortCode]; exists {
		return false, nil
	}
	s.links[link.ShortCode] = *link
	return true, nil
}

func (s *MemoryLinkStore) Get(ctx context.Context, shortCode string) (*model.Link, error) {
	s.mu.RLock()
	link, ok := s.links[shortCode]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}
	return &link, nil
}

func (s *MemoryLinkStore) IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error {
	if err := checkCounter(field, delta); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[shortCode]
	if !ok {
		return fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}
	link.ClickCount += delta
	s.links[shortCode] = link
	return nil
}

// Len returns the number of stored links.
func (s *MemoryLinkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}
