package observer

import (
	"context"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/service"
)

var _ service.Observer = (*SentryObserver)(nil)

// SentryObserver reports infrastructure failures. Validation and not-found errors are
// caller mistakes and are not sent.
type SentryObserver struct {
	service.NopObserver
	hub *sentry.Hub
}

// NewSentryObserver uses hub when the request context carries none. A nil hub means the
// global one.
func NewSentryObserver(hub *sentry.Hub) *SentryObserver {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryObserver{hub: hub}
}

func (o *SentryObserver) Failed(ctx context.Context, op string, err error) {
	if !apperrors.IsStoreError(err) && !apperrors.IsCapacityError(err) {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = o.hub
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", op)
		if bizErr := apperrors.GetBusinessError(err); bizErr != nil {
			scope.SetTag("error_code", bizErr.Code)
		}
		hub.CaptureException(err)
	})
}

// Created and Resolved are not errors; only breadcrumbs are kept for context.
func (o *SentryObserver) Created(ctx context.Context, link *model.Link) {
	o.breadcrumb(ctx, "link.created", link.ShortCode)
}

func (o *SentryObserver) Resolved(ctx context.Context, shortCode, _ string) {
	o.breadcrumb(ctx, "link.resolved", shortCode)
}

func (o *SentryObserver) breadcrumb(ctx context.Context, category, shortCode string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		return
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  shortCode,
		Level:    sentry.LevelInfo,
	}, nil)
}
