package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkudrin/photostore/internal/models"
)

// Refresh-token persistence. The presence of a row is the single source of
// truth for refresh validity: verification deletes rows it finds expired, and
// rotation deletes the presented row before inserting the replacement.

func (r *GormRepo) CreateRefreshToken(ctx context.Context, rec *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}

// FindRefreshByToken returns (nil, nil) when no row matches.
func (r *GormRepo) FindRefreshByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteRefreshByToken is idempotent; deleting an absent token is not an error.
func (r *GormRepo) DeleteRefreshByToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.RefreshToken{}).Error
}
