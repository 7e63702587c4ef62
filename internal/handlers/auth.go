package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/logging"
	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/service"
)

type AuthHandler struct {
	Svc *service.AuthService
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		l.Warn("register failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":            "User created successfully.",
		"user":               res.User,
		"verification_token": res.VerificationToken,
	})
}

func (h *AuthHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	already, err := h.Svc.VerifyEmail(ctx, c.Param("token"))
	if err != nil {
		return httpError(err)
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Email already verified."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully."})
}

func (h *AuthHandler) ResendVerification(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, already, err := h.Svc.ResendVerification(ctx, req.Email)
	if err != nil {
		return httpError(err)
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Email already verified."})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":            "Verification email sent.",
		"verification_token": token,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("login failed", "error", err)
		return httpError(err)
	}

	if res.VerificationRequired {
		return c.JSON(http.StatusCreated, echo.Map{
			"message":            "Please verify your email before logging in.",
			"verification_token": res.VerificationToken,
		})
	}

	l.Info("login successful")
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"is_admin":      res.IsAdmin,
	})
}

// Refresh exchanges a refresh token for a new pair. The guard has already
// validated type, signature, expiry and revocation; the service owns the
// atomic rotation.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	raw, _ := c.Get(mwauth.CtxRawToken).(string)
	pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Logout(ctx, mwauth.JTI(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) UserInfo(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := mwauth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	user, err := h.Svc.CurrentUser(ctx, userID, mwauth.IsAdmin(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}
