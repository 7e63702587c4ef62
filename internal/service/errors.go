package service

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidEmail    = errors.New("Invalid email.")
	ErrInvalidPassword = errors.New("Invalid password.")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAdminProtected  = errors.New("you can't delete admin")
	ErrSameName        = errors.New("You can't use same name")
)
