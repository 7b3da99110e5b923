package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/utils"
)

const DefaultMaxAttempts = 5

// LinkRegistry creates short links and resolves them. It keeps no state between calls;
// every decision is made against the store.
type LinkRegistry struct {
	store       repository.LinkStore
	generator   utils.CodeGenerator
	observer    Observer
	maxAttempts int
	reserved    []string
	now         func() time.Time
}

type Option func(*LinkRegistry)

func WithObserver(o Observer) Option {
	return func(r *LinkRegistry) {
		if o != nil {
			r.observer = o
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(r *LinkRegistry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithReservedCodes makes Create skip codes that would shadow routes of the caller.
func WithReservedCodes(codes ...string) Option {
	return func(r *LinkRegistry) {
		r.reserved = append(r.reserved, codes...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *LinkRegistry) {
		r.now = now
	}
}

func NewLinkRegistry(store repository.LinkStore, generator utils.CodeGenerator, opts ...Option) *LinkRegistry {
	r := &LinkRegistry{
		store:       store,
		generator:   generator,
		observer:    NopObserver{},
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores longURL under a freshly generated short code. A taken code is retried
// with a new one up to the attempt budget, after which a capacity error is returned.
func (r *LinkRegistry) Create(ctx context.Context, longURL string) (*model.Link, error) {
	if err := utils.ValidateLongURL(longURL); err != nil {
		r.observer.Failed(ctx, "create", err)
		return nil, err
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		code := r.generator.Generate()
		r.observer.CreateAttempt(ctx, attempt, code)

		if utils.IsReservedCode(code, r.reserved) {
			r.observer.CollisionRetry(ctx, attempt, code)
			continue
		}

		link := &model.Link{
			ShortCode:  code,
			LongURL:    longURL,
			CreatedAt:  r.now().UTC(),
			ClickCount: 0,
		}

		inserted, err := r.store.PutIfAbsent(ctx, link)
		if err != nil {
			return nil, r.fail(ctx, "create", apperrors.NewStoreError("create link", err))
		}

		if inserted {
			r.observer.Created(ctx, link)
			return link, nil
		}

		r.observer.CollisionRetry(ctx, attempt, code)
	}

	return nil, r.fail(ctx, "create", apperrors.NewCapacityError(r.maxAttempts))
}

// Resolve returns the target of shortCode and counts the visit.
func (r *LinkRegistry) Resolve(ctx context.Context, shortCode string) (string, error) {
	link, err := r.store.Get(ctx, shortCode)
	if err != nil {
		return "", r.fail(ctx, "resolve", translateStoreError("resolve link", shortCode, err))
	}

	if err := r.store.IncrementCounter(ctx, shortCode, model.FieldClickCount, 1); err != nil {
		return "", r.fail(ctx, "resolve", translateStoreError("record click", shortCode, err))
	}

	r.observer.Resolved(ctx, shortCode, link.LongURL)
	return link.LongURL, nil
}

// Stats returns the stored record without counting a visit.
func (r *LinkRegistry) Stats(ctx context.Context, shortCode string) (*model.Link, error) {
	link, err := r.store.Get(ctx, shortCode)
	if err != nil {
		return nil, r.fail(ctx, "stats", translateStoreError("get link", shortCode, err))
	}
	return link, nil
}

func (r *LinkRegistry) fail(ctx context.Context, op string, err error) error {
	r.observer.Failed(ctx, op, err)
	return err
}

// translateStoreError maps store failures onto the error taxonomy: unknown codes stay
// not-found, everything else becomes an opaque store error.
func translateStoreError(op, shortCode string, err error) error {
	if errors.Is(err, apperrors.ErrLinkNotFound) {
		return fmt.Errorf("short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}
	return apperrors.NewStoreError(op, err)
}
