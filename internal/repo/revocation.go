package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_api/internal/models"
)

// Revoke adds jti to the blocklist. Revoking an already revoked jti is a
// successful no-op and never duplicates a ledger row.
func (r *GormRepo) Revoke(ctx context.Context, jti string) error {
	_, err := r.revokeOnce(r.DB.WithContext(ctx), jti)
	return err
}

// RevokeOnce reports whether this call inserted the ledger row. Exactly one
// of any number of concurrent calls for the same jti observes true, which is
// what makes refresh-token rotation one-shot.
func (r *GormRepo) RevokeOnce(ctx context.Context, jti string) (bool, error) {
	return r.revokeOnce(r.DB.WithContext(ctx), jti)
}

func (r *GormRepo) revokeOnce(db *gorm.DB, jti string) (bool, error) {
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "jti"}},
		DoNothing: true,
	}).Create(&models.RevokedToken{JTI: jti})
	if res.Error != nil {
		// Some drivers report the conflict instead of swallowing it.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
