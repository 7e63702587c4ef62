package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"

	"github.com/google/uuid"

	"github.com/Skotchmaster/store_api/internal/events"
	"github.com/Skotchmaster/store_api/internal/hash"
	"github.com/Skotchmaster/store_api/internal/logging"
	pkgmail "github.com/Skotchmaster/store_api/internal/mail"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/tokens"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

type AuthService struct {
	Repo     *repo.GormRepo
	Codec    *tokens.Codec
	Mailer   pkgmail.Mailer
	Producer *events.Producer
	BaseURL  string
}

type RegisterResult struct {
	User              *models.User
	VerificationToken string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	IsAdmin      bool

	// Set instead of the tokens when the account's email is unverified.
	VerificationRequired bool
	VerificationToken    string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func validateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-64 characters of letters, digits, underscore or dash", ErrValidation)
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 256 {
		return fmt.Errorf("%w: email must be at most 256 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return fmt.Errorf("%w: password must be 8-72 characters", ErrValidation)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain at least one letter and one digit", ErrValidation)
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	if err := s.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}

func (s *AuthService) verificationLink(token string) string {
	return s.BaseURL + "/api/v1/verify/" + token
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, token string) {
	if s.Mailer == nil || !s.Mailer.IsEnabled() {
		return
	}
	if err := s.Mailer.SendVerification(user.Email, user.Username, s.verificationLink(token)); err != nil {
		logging.FromContext(ctx).Error("verification mail send failed", "user_id", user.ID, "error", err)
	}
}

// Register creates an unverified user and synchronously issues a
// verification token. The token is returned to the caller even when mail
// delivery is configured.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateUsername):
			return nil, fmt.Errorf("%w: a user with that username already exists", ErrConflict)
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, fmt.Errorf("%w: a user with that email already exists", ErrConflict)
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrConflict
		}
		l.Error("register failed", "error", err)
		return nil, err
	}

	verifyToken, err := s.Codec.MintVerification(user.ID.String())
	if err != nil {
		l.Error("register failed", "reason", "cannot mint verification token", "error", err)
		return nil, err
	}

	s.sendVerification(ctx, &user, verifyToken)
	s.publish(ctx, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID.String(),
		"username": user.Username,
	})

	l.Info("user registered", "user_id", user.ID)
	return &RegisterResult{User: &user, VerificationToken: verifyToken}, nil
}

// VerifyEmail flips email_verified exactly once. The second verification of
// the same account succeeds idempotently; alreadyVerified distinguishes it.
// Decode failures and unknown users are reported identically.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error) {
	l := logging.FromContext(ctx).With("svc", "auth.verify")

	sub, err := s.Codec.ParseVerification(token)
	if err != nil {
		l.Warn("verification failed", "reason", err.Error())
		return false, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return false, ErrInvalidToken
	}

	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrInvalidToken
		}
		return false, err
	}

	if user.EmailVerified {
		return true, nil
	}

	if err := s.Repo.SetEmailVerified(ctx, user.ID); err != nil {
		return false, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "email_verified",
		"user_id": user.ID.String(),
	})

	l.Info("email verified", "user_id", user.ID)
	return false, nil
}

// ResendVerification mints a new verification token for an unverified
// account. There is no rate limiting here; callers add it externally.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (token string, alreadyVerified bool, err error) {
	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", false, ErrNotFound
		}
		return "", false, err
	}

	if user.EmailVerified {
		return "", true, nil
	}

	verifyToken, err := s.Codec.MintVerification(user.ID.String())
	if err != nil {
		return "", false, err
	}

	s.sendVerification(ctx, user, verifyToken)
	return verifyToken, false, nil
}

// Login authenticates by email and password. An unverified account does not
// get tokens; it gets a fresh verification token instead, so unverified
// users can always self-serve a new link from the login endpoint.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidEmail
		}
		l.Error("login failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidPassword
	}

	if !user.EmailVerified {
		verifyToken, err := s.Codec.MintVerification(user.ID.String())
		if err != nil {
			return nil, err
		}
		s.sendVerification(ctx, user, verifyToken)
		return &LoginResult{
			VerificationRequired: true,
			VerificationToken:    verifyToken,
		}, nil
	}

	// A password login is the only source of fresh access tokens.
	access, _, err := s.Codec.MintAccess(user.ID.String(), user.IsAdmin(), true)
	if err != nil {
		l.Error("login failed", "error", err)
		return nil, err
	}
	refresh, _, err := s.Codec.MintRefresh(user.ID.String())
	if err != nil {
		l.Error("login failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID.String(),
		"username": user.Username,
	})

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		IsAdmin:      user.IsAdmin(),
	}, nil
}

// Refresh rotates a one-time-use refresh token. Revoking the old jti is an
// insert-once operation, so of two concurrent refreshes with the same token
// exactly one succeeds; the loser fails before anything is minted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.ParseRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh failed", "reason", err.Error())
		return nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	rotated, err := s.Repo.RevokeOnce(ctx, claims.ID)
	if err != nil {
		l.Error("refresh failed", "error", err)
		return nil, err
	}
	if !rotated {
		l.Warn("refresh failed", "reason", "token already rotated")
		return nil, ErrUnauthorized
	}

	// No password was re-entered, so the new access token is not fresh.
	// is_admin is re-read from the user's current role at mint time.
	access, _, err := s.Codec.MintAccess(user.ID.String(), user.IsAdmin(), false)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.Codec.MintRefresh(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revokes the presented token's jti, whichever type it is.
// Revoking twice reports success both times.
func (s *AuthService) Logout(ctx context.Context, jti string) error {
	return s.Repo.Revoke(ctx, jti)
}

// CurrentUser returns the caller's profile. Admin callers get nested
// category/topic detail; everyone else a plain profile.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID, isAdmin bool) (*models.User, error) {
	if isAdmin {
		user, err := s.Repo.UserWithCategories(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return user, nil
	}

	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Users lists every user with their categories, for the admin listing.
func (s *AuthService) Users(ctx context.Context) ([]models.User, error) {
	return s.Repo.UsersWithCategories(ctx)
}

// DeleteUser removes an account. Admin accounts cannot be deleted.
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteUser(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrAdminProtected):
		return ErrAdminProtected
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
