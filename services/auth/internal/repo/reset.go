package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/altera-edu/school-platform/services/auth/internal/models"
)

// IssueResetToken invalidates every unused token the user still has and
// inserts the fresh one inside a single transaction, so at most one live
// token per user can exist even under concurrent requests.
func (r *GormRepo) IssueResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordResetToken{}).
			Where("user_id = ? AND used = ?", t.UserID, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *GormRepo) FindResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// RedeemResetToken applies the new password hash and consumes the token in
// one transaction. The used-flag guard in the UPDATE makes a concurrent
// double redeem lose cleanly.
func (r *GormRepo) RedeemResetToken(ctx context.Context, t *models.PasswordResetToken, passwordHash string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used = ?", t.ID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.User{}).
			Where("id = ?", t.UserID).
			Update("password_hash", passwordHash).Error
	})
}

func (r *GormRepo) DeleteResetToken(ctx context.Context, id any) error {
	return r.DB.WithContext(ctx).Delete(&models.PasswordResetToken{}, "id = ?", id).Error
}

func (r *GormRepo) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
