// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deletion-server/models"

	"gorm.io/gorm"
)

type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Insert(ctx context.Context, token *models.DeletionToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *GormTokenStore) FindByToken(ctx context.Context, value string) (*models.DeletionToken, error) {
	var token models.DeletionToken
	if err := s.db.WithContext(ctx).Where("token = ?", value).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return &token, nil
}

// MarkUsedIfUnused flips used to true in a single UPDATE guarded by
// used = false. changed is false when another caller got there first.
func (s *GormTokenStore) MarkUsedIfUnused(ctx context.Context, value string, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.DeletionToken{}).
		Where("token = ? AND used = ?", value, false).
		Updates(map[string]any{"used": true, "used_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormTokenStore) ListConsumedSince(ctx context.Context, since time.Time) ([]models.DeletionToken, error) {
	var tokens []models.DeletionToken
	if err := s.db.WithContext(ctx).
		Where("used = ? AND used_at >= ?", true, since).
		Order("used_at ASC").
		Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return tokens, nil
}
