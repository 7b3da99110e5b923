package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

type PostgresLinkStore struct {
	db *sql.DB
}

var _ LinkStore = (*PostgresLinkStore)(nil)

func NewPostgresLinkStore(db *sql.DB) *PostgresLinkStore {
	return &PostgresLinkStore{
		db: db,
	}
}

func (r *PostgresLinkStore) PutIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	// Атомарная вставка: конфликт по short_code не меняет существующую запись
	query := `
	INSERT INTO links (short_code, long_url, created_at, click_count)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (short_code) DO NOTHING
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		link.ShortCode,
		link.LongURL,
		link.CreatedAt,
		link.ClickCount,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected == 1, nil
}

func (r *PostgresLinkStore) Get(ctx context.Context, shortCode string) (*model.Link, error) {
	query := `
	SELECT short_code, long_url, created_at, click_count
	FROM links
	WHERE short_code = $1
	`

	link := &model.Link{}
	err := r.db.QueryRowContext(ctx, query, shortCode).Scan(
		&link.ShortCode,
		&link.LongURL,
		&link.CreatedAt,
		&link.ClickCount,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (r *PostgresLinkStore) IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error {
	if err := checkCounter(field, delta); err != nil {
		return err
	}

	query := `
	UPDATE links
	SET click_count = click_count + $1
	WHERE short_code = $2
	`

	result, err := r.db.ExecContext(ctx, query, delta, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}

	return nil
}
