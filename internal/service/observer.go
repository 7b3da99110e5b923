package service

import (
	"context"

	"github.com/Kosench/shortlink/internal/model"
)

// Observer receives notifications from LinkRegistry. Implementations must not block
// and cannot influence the outcome of an operation.
type Observer interface {
	CreateAttempt(ctx context.Context, attempt int, shortCode string)
	CollisionRetry(ctx context.Context, attempt int, shortCode string)
	Created(ctx context.Context, link *model.Link)
	Resolved(ctx context.Context, shortCode, longURL string)
	Failed(ctx context.Context, op string, err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) CreateAttempt(context.Context, int, string)  {}
func (NopObserver) CollisionRetry(context.Context, int, string) {}
func (NopObserver) Created(context.Context, *model.Link)        {}
func (NopObserver) Resolved(context.Context, string, string)    {}
func (NopObserver) Failed(context.Context, string, error)       {}
