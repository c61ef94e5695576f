package repo

import (
	"context"
	"errors"
	"time"

	"github.com/altera-edu/school-platform/services/auth/internal/models"
)

func (r *GormRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.BlacklistedToken{}).
		Where("token = ? AND expires_at > ?", token, time.Now().UTC()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Blacklist inserts a revocation row. Re-blacklisting the same token is a
// no-op so logout stays idempotent.
func (r *GormRepo) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	var existing models.BlacklistedToken
	err := r.DB.WithContext(ctx).Where("token = ?", token).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(translate(err), ErrNotFound) {
		return err
	}
	row := models.BlacklistedToken{
		Token:         token,
		ExpiresAt:     expiresAt,
		BlacklistedAt: time.Now().UTC(),
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r *GormRepo) PurgeExpiredBlacklist(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.BlacklistedToken{})
	return res.RowsAffected, res.Error
}
