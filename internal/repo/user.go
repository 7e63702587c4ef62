package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/models"
)

// CreateUser relies on the unique constraints on username and email rather
// than a check-then-insert, so two concurrent registrations with the same
// name cannot both succeed. The follow-up lookup only picks the error text.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.duplicateUserField(ctx, u)
		}
		return err
	}
	return nil
}

func (r *GormRepo) duplicateUserField(ctx context.Context, u *models.User) error {
	var existing models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", u.Username).First(&existing).Error; err == nil {
		return ErrDuplicateUsername
	}
	if err := r.DB.WithContext(ctx).Where("email = ?", u.Email).First(&existing).Error; err == nil {
		return ErrDuplicateEmail
	}
	return ErrConflict
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("email_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser refuses to delete admin accounts.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := r.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrAdminProtected
	}
	return r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// UsersWithCategories returns every user with their categories and the
// categories' topics preloaded, for the admin listing.
func (r *GormRepo) UsersWithCategories(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Preload("Categories.Topics").
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserWithCategories loads a single user with nested category/topic detail.
func (r *GormRepo) UserWithCategories(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Preload("Categories.Topics").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
