package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrConflict          = errors.New("already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrNotFound          = errors.New("not found")
	ErrAdminProtected    = errors.New("you can't delete admin")
)

type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo { return &GormRepo{DB: db} }

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
