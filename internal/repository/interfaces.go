package repository

import (
	"context"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

// LinkStore is the key-value contract the link registry builds on.
// PutIfAbsent and IncrementCounter must each be atomic with respect to concurrent callers.
type LinkStore interface {
	// PutIfAbsent inserts link unless its short code is taken. It reports whether the
	// insert happened; on false nothing was changed.
	PutIfAbsent(ctx context.Context, link *model.Link) (bool, error)
	// Get returns apperrors.ErrLinkNotFound when the code is unknown.
	Get(ctx context.Context, shortCode string) (*model.Link, error)
	// IncrementCounter adds delta to field. Unknown codes yield apperrors.ErrLinkNotFound.
	IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error
}

func checkCounter(field string, delta int64) error {
	if field != model.FieldClickCount {
		return apperrors.ErrUnknownCounter
	}
	if delta < 0 {
		return apperrors.ErrNegativeDelta
	}
	return nil
}
