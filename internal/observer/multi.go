package observer

import (
	"context"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/service"
)

// Multi forwards every notification to each observer in order.
type Multi []service.Observer

var _ service.Observer = Multi(nil)

func (m Multi) CreateAttempt(ctx context.Context, attempt int, shortCode string) {
	for _, o := range m {
		o.CreateAttempt(ctx, attempt, shortCode)
	}
}

func (m Multi) CollisionRetry(ctx context.Context, attempt int, shortCode string) {
	for _, o := range m {
		o.CollisionRetry(ctx, attempt, shortCode)
	}
}

func (m Multi) Created(ctx context.Context, link *model.Link) {
	for _, o := range m {
		o.Created(ctx, link)
	}
}

func (m Multi) Resolved(ctx context.Context, shortCode, longURL string) {
	for _, o := range m {
		o.Resolved(ctx, shortCode, longURL)
	}
}

func (m Multi) Failed(ctx context.Context, op string, err error) {
	for _, o := range m {
		o.Failed(ctx, op, err)
	}
}
