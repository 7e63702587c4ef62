package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/service"
	"github.com/Skotchmaster/store_api/internal/tokens"
)

func newTestEnv(t *testing.T) (*AuthHandler, *service.AuthService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Category{},
		&models.Topic{},
	))

	svc := &service.AuthService{
		Repo:    &repo.GormRepo{DB: db},
		Codec:   tokens.NewCodec([]byte("test-jwt-secret"), 15*time.Minute, 24*time.Hour, time.Hour),
		BaseURL: "http://localhost:8080",
	}
	return &AuthHandler{Svc: svc}, svc
}

func jsonRequest(t *testing.T, method, target string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var data map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	return data
}

func TestAuthHandler_Register(t *testing.T) {
	h, _ := newTestEnv(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password1",
	}

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeBody(t, rec)
	require.Equal(t, "User created successfully.", data["message"])
	require.NotEmpty(t, data["verification_token"])

	user, ok := data["user"].(map[string]any)
	require.True(t, ok, "expected user object in response")
	require.Equal(t, "test_user", user["username"])
	require.Equal(t, "user", user["role"])
	require.NotEmpty(t, user["id"])
	_, leaked := user["password_hash"]
	require.False(t, leaked, "password hash must not be serialized")

	// Same username again conflicts.
	c2, _ := jsonRequest(t, http.MethodPost, "/api/v1/register", payload)
	err := h.Register(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestAuthHandler_VerifyThenLogin(t *testing.T) {
	h, _ := newTestEnv(t)

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/register", map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password1",
	})
	require.NoError(t, h.Register(c))
	verifyToken := decodeBody(t, rec)["verification_token"].(string)

	login := map[string]string{"email": "test@example.com", "password": "password1"}

	// Unverified accounts get a verification token, not a session.
	cLogin, recLogin := jsonRequest(t, http.MethodPost, "/api/v1/login", login)
	require.NoError(t, h.Login(cLogin))
	require.Equal(t, http.StatusCreated, recLogin.Code)
	data := decodeBody(t, recLogin)
	require.Equal(t, "Please verify your email before logging in.", data["message"])
	require.NotEmpty(t, data["verification_token"])

	cVerify, recVerify := jsonRequest(t, http.MethodGet, "/api/v1/verify/"+verifyToken, nil)
	cVerify.SetParamNames("token")
	cVerify.SetParamValues(verifyToken)
	require.NoError(t, h.Verify(cVerify))
	require.Equal(t, http.StatusOK, recVerify.Code)
	require.Equal(t, "Email verified successfully.", decodeBody(t, recVerify)["message"])

	// Second verification is reported, not failed.
	cAgain, recAgain := jsonRequest(t, http.MethodGet, "/api/v1/verify/"+verifyToken, nil)
	cAgain.SetParamNames("token")
	cAgain.SetParamValues(verifyToken)
	require.NoError(t, h.Verify(cAgain))
	require.Equal(t, http.StatusOK, recAgain.Code)
	require.Equal(t, "Email already verified.", decodeBody(t, recAgain)["message"])

	cOK, recOK := jsonRequest(t, http.MethodPost, "/api/v1/login", login)
	require.NoError(t, h.Login(cOK))
	require.Equal(t, http.StatusOK, recOK.Code)
	session := decodeBody(t, recOK)
	require.NotEmpty(t, session["access_token"])
	require.NotEmpty(t, session["refresh_token"])
	require.Equal(t, false, session["is_admin"])
}

func TestAuthHandler_Login_WrongCredentials(t *testing.T) {
	h, svc := newTestEnv(t)

	reg, err := svc.Register(t.Context(), "test_user", "test@example.com", "password1")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(t.Context(), reg.VerificationToken)
	require.NoError(t, err)

	cases := []struct {
		name    string
		payload map[string]string
		message string
	}{
		{
			name:    "unknown email",
			payload: map[string]string{"email": "nobody@example.com", "password": "password1"},
			message: "Invalid email.",
		},
		{
			name:    "wrong password",
			payload: map[string]string{"email": "test@example.com", "password": "wrongpass1"},
			message: "Invalid password.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := jsonRequest(t, http.MethodPost, "/api/v1/login", tc.payload)
			err := h.Login(c)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError")
			require.Equal(t, http.StatusUnauthorized, he.Code)
			require.Equal(t, tc.message, he.Message)
		})
	}
}

func TestAuthHandler_RefreshRotation(t *testing.T) {
	h, svc := newTestEnv(t)

	reg, err := svc.Register(t.Context(), "test_user", "test@example.com", "password1")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(t.Context(), reg.VerificationToken)
	require.NoError(t, err)
	login, err := svc.Login(t.Context(), "test@example.com", "password1")
	require.NoError(t, err)

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/refresh", nil)
	c.Set(mwauth.CtxRawToken, login.RefreshToken)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	pair := decodeBody(t, rec)
	require.NotEmpty(t, pair["access_token"])
	require.NotEmpty(t, pair["refresh_token"])

	// The spent refresh token cannot be replayed.
	c2, _ := jsonRequest(t, http.MethodPost, "/api/v1/refresh", nil)
	c2.Set(mwauth.CtxRawToken, login.RefreshToken)
	err = h.Refresh(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	h, svc := newTestEnv(t)

	reg, err := svc.Register(t.Context(), "test_user", "test@example.com", "password1")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(t.Context(), reg.VerificationToken)
	require.NoError(t, err)
	login, err := svc.Login(t.Context(), "test@example.com", "password1")
	require.NoError(t, err)

	claims, err := svc.Codec.ParseRefresh(login.RefreshToken)
	require.NoError(t, err)

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/logout", nil)
	c.Set(mwauth.CtxJTI, claims.ID)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "logged out", decodeBody(t, rec)["message"])

	revoked, err := svc.Repo.IsRevoked(t.Context(), claims.ID)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestAuthHandler_UserInfo(t *testing.T) {
	h, svc := newTestEnv(t)

	reg, err := svc.Register(t.Context(), "test_user", "test@example.com", "password1")
	require.NoError(t, err)

	c, rec := jsonRequest(t, http.MethodGet, "/api/v1/user-info", nil)
	c.Set(mwauth.CtxUserID, reg.User.ID)
	c.Set(mwauth.CtxIsAdmin, false)
	require.NoError(t, h.UserInfo(c))
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)
	require.Equal(t, "test_user", data["username"])
}
