package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/tokens"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Category{},
		&models.Topic{},
	))

	return &AuthService{
		Repo:    &repo.GormRepo{DB: db},
		Codec:   tokens.NewCodec([]byte("test-jwt-secret"), 15*time.Minute, 24*time.Hour, time.Hour),
		BaseURL: "http://localhost:8080",
	}
}

func registerUser(t *testing.T, svc *AuthService, username, email string) *RegisterResult {
	t.Helper()

	res, err := svc.Register(context.Background(), username, email, "password1")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.NotEmpty(t, res.VerificationToken)
	return res
}

func registerVerified(t *testing.T, svc *AuthService, username, email string) *RegisterResult {
	t.Helper()

	res := registerUser(t, svc, username, email)
	already, err := svc.VerifyEmail(context.Background(), res.VerificationToken)
	require.NoError(t, err)
	require.False(t, already)
	return res
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "short username", username: "ab", email: "a@example.com", password: "password1"},
		{name: "username with spaces", username: "a user", email: "a@example.com", password: "password1"},
		{name: "bad email", username: "alice", email: "not-an-email", password: "password1"},
		{name: "short password", username: "alice", email: "a@example.com", password: "pass1"},
		{name: "password without digit", username: "alice", email: "a@example.com", password: "passwords"},
		{name: "password without letter", username: "alice", email: "a@example.com", password: "12345678"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_Conflicts(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registerUser(t, svc, "alice", "alice@example.com")

	_, err := svc.Register(ctx, "alice", "other@example.com", "password1")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "password1")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_VerifyEmail_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res := registerUser(t, svc, "alice", "alice@example.com")

	already, err := svc.VerifyEmail(ctx, res.VerificationToken)
	require.NoError(t, err)
	assert.False(t, already)

	// Verifying the same account again succeeds but reports it.
	already, err = svc.VerifyEmail(ctx, res.VerificationToken)
	require.NoError(t, err)
	assert.True(t, already)
}

func TestAuthService_VerifyEmail_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	_, err := svc.VerifyEmail(context.Background(), "not-a-valid-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_VerifyEmail_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res := registerVerified(t, svc, "alice", "alice@example.com")

	access, _, err := svc.Codec.MintAccess(res.User.ID.String(), false, true)
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	res, err := svc.Login(context.Background(), "nobody@example.com", "password1")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	registerVerified(t, svc, "alice", "alice@example.com")

	res, err := svc.Login(context.Background(), "alice@example.com", "wrongpass1")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAuthService_Login_UnverifiedGetsVerificationToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registerUser(t, svc, "alice", "alice@example.com")

	res, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, res.VerificationRequired)
	assert.NotEmpty(t, res.VerificationToken)
	assert.Empty(t, res.AccessToken)
	assert.Empty(t, res.RefreshToken)

	// The returned token must actually verify the account.
	already, err := svc.VerifyEmail(ctx, res.VerificationToken)
	require.NoError(t, err)
	assert.False(t, already)

	res, err = svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	assert.False(t, res.VerificationRequired)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
}

func TestAuthService_Login_MintsFreshAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	reg := registerVerified(t, svc, "alice", "alice@example.com")

	res, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)

	claims, err := svc.Codec.ParseAccess(res.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Fresh)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)

	refreshClaims, err := svc.Codec.ParseRefresh(res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), refreshClaims.Subject)
}

func TestAuthService_Login_AdminClaimFollowsRole(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	reg := registerVerified(t, svc, "root", "root@example.com")
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).
		Where("id = ?", reg.User.ID).
		Update("role", models.RoleAdmin).Error)

	res, err := svc.Login(ctx, "root@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)

	claims, err := svc.Codec.ParseAccess(res.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestAuthService_Refresh_RotatesOnce(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registerVerified(t, svc, "alice", "alice@example.com")
	login, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	// Refreshed access tokens are never fresh.
	claims, err := svc.Codec.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.Fresh)

	// The spent token is dead; the new one still works.
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registerVerified(t, svc, "alice", "alice@example.com")
	login, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	pair, err := svc.Refresh(context.Background(), "not-a-valid-jwt")
	require.Error(t, err)
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Logout_RevokesAndStaysRevoked(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registerVerified(t, svc, "alice", "alice@example.com")
	login, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	claims, err := svc.Codec.ParseRefresh(login.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	require.NoError(t, svc.Logout(ctx, claims.ID))

	revoked, err := svc.Repo.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// A revoked refresh token cannot be rotated.
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_ResendVerification(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registerUser(t, svc, "alice", "alice@example.com")

	token, already, err := svc.ResendVerification(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, already)
	require.NotEmpty(t, token)

	_, err = svc.VerifyEmail(ctx, token)
	require.NoError(t, err)

	_, already, err = svc.ResendVerification(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, already)

	_, _, err = svc.ResendVerification(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_DeleteUser_AdminProtected(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	reg := registerVerified(t, svc, "root", "root@example.com")
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).
		Where("id = ?", reg.User.ID).
		Update("role", models.RoleAdmin).Error)

	err := svc.DeleteUser(ctx, reg.User.ID)
	assert.ErrorIs(t, err, ErrAdminProtected)

	user := registerUser(t, svc, "alice", "alice@example.com")
	require.NoError(t, svc.DeleteUser(ctx, user.User.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, user.User.ID), ErrNotFound)
}
