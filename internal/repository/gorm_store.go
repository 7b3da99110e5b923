package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

type linkRow struct {
	ShortCode  string    `gorm:"primaryKey;size:16"`
	LongURL    string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	ClickCount int64     `gorm:"not null;default:0"`
}

func (linkRow) TableName() string {
	return "links"
}

// GormLinkStore persists links through GORM; used with the SQLite driver.
type GormLinkStore struct {
	db *gorm.DB
}

var _ LinkStore = (*GormLinkStore)(nil)

func NewGormLinkStore(db *gorm.DB) *GormLinkStore {
	return &GormLinkStore{db: db}
}

// Migrate creates the links table if needed.
func (s *GormLinkStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&linkRow{}); err != nil {
		return fmt.Errorf("failed to migrate links table: %w", err)
	}
	return nil
}

func (s *GormLinkStore) PutIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	row := linkRow{
		ShortCode:  link.ShortCode,
		LongURL:    link.LongURL,
		CreatedAt:  link.CreatedAt,
		ClickCount: link.ClickCount,
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert link: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (s *GormLinkStore) Get(ctx context.Context, shortCode string) (*model.Link, error) {
	var row linkRow
	err := s.db.WithContext(ctx).Where("short_code = ?", shortCode).Take(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &model.Link{
		ShortCode:  row.ShortCode,
		LongURL:    row.LongURL,
		CreatedAt:  row.CreatedAt,
		ClickCount: row.ClickCount,
	}, nil
}

func (s *GormLinkStore) IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error {
	if err := checkCounter(field, delta); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&linkRow{}).
		Where("short_code = ?", shortCode).
		UpdateColumn(model.FieldClickCount, gorm.Expr("click_count + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("link with short code '%s': %w", shortCode, apperrors.ErrLinkNotFound)
	}

	return nil
}
