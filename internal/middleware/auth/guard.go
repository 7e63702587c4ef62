package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/tokens"
)

// Context keys set by the guard for downstream handlers.
const (
	CtxClaims   = "claims"
	CtxUserID   = "user_id"
	CtxJTI      = "jti"
	CtxIsAdmin  = "is_admin"
	CtxFresh    = "fresh"
	CtxRawToken = "raw_token"
)

// Guard validates bearer tokens and enforces per-route requirements.
// Requirements compose as route middleware and are evaluated in order:
// token validity, revocation, freshness, admin claim, email-verified lookup.
// The first failure short-circuits, so an invalid token never costs a store
// lookup.
type Guard struct {
	Codec *tokens.Codec
	Repo  *repo.GormRepo
}

func NewGuard(codec *tokens.Codec, r *repo.GormRepo) *Guard {
	return &Guard{Codec: codec, Repo: r}
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	rest, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", false
	}
	return rest, rest != ""
}

// tokenError maps codec failures to distinct caller-visible 401 reasons.
// Only the failure kind is logged, never claim contents.
func tokenError(c echo.Context, err error) *echo.HTTPError {
	var msg string
	switch {
	case errors.Is(err, tokens.ErrTokenExpired):
		msg = "token expired"
	case errors.Is(err, tokens.ErrSignatureInvalid):
		msg = "invalid token signature"
	case errors.Is(err, tokens.ErrTokenMalformed):
		msg = "malformed token"
	case errors.Is(err, tokens.ErrWrongPurpose):
		msg = "wrong token type"
	default:
		msg = "invalid token"
	}
	logging.FromContext(c.Request().Context()).Warn("token rejected", "reason", msg)
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

func (g *Guard) authenticate(c echo.Context, parse func(string) (*tokens.Claims, error)) error {
	raw, ok := bearerToken(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	claims, err := parse(raw)
	if err != nil {
		return tokenError(c, err)
	}

	revoked, err := g.Repo.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if revoked {
		logging.FromContext(c.Request().Context()).Warn("token rejected", "reason", "revoked")
		return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	c.Set(CtxClaims, claims)
	c.Set(CtxUserID, userID)
	c.Set(CtxJTI, claims.ID)
	c.Set(CtxIsAdmin, claims.IsAdmin)
	c.Set(CtxFresh, claims.Fresh)
	c.Set(CtxRawToken, raw)
	return nil
}

// RequireAuth admits valid, unexpired, unrevoked access tokens.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := g.authenticate(c, g.Codec.ParseAccess); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireRefresh admits refresh tokens only, for the rotation endpoint.
func (g *Guard) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := g.authenticate(c, g.Codec.ParseRefresh); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireAnyToken admits either token type. Logout revokes whichever token
// the client still holds.
func (g *Guard) RequireAnyToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		parse := func(raw string) (*tokens.Claims, error) {
			claims, err := g.Codec.ParseAny(raw)
			if err != nil {
				return nil, err
			}
			if claims.Purpose != tokens.PurposeAccess && claims.Purpose != tokens.PurposeRefresh {
				return nil, tokens.ErrWrongPurpose
			}
			return claims, nil
		}
		if err := g.authenticate(c, parse); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireFresh only admits access tokens minted by a password login.
// Limits the blast radius of a stolen long-lived token used without recent
// re-authentication.
func (g *Guard) RequireFresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		fresh, _ := c.Get(CtxFresh).(bool)
		if !fresh {
			return echo.NewHTTPError(http.StatusUnauthorized, "fresh token required")
		}
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, _ := c.Get(CtxIsAdmin).(bool)
		if !isAdmin {
			return echo.NewHTTPError(http.StatusUnauthorized, "Admin privilege required")
		}
		return next(c)
	}
}

// RequireVerifiedEmail re-reads the user record; verification state is not a
// claim, so it takes effect immediately rather than on next token mint.
func (g *Guard) RequireVerifiedEmail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := c.Get(CtxUserID).(uuid.UUID)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}
		user, err := g.Repo.UserByID(c.Request().Context(), userID)
		if err != nil {
			// A vanished account is unverified; anything else is ours.
			if errors.Is(err, repo.ErrNotFound) {
				return echo.NewHTTPError(http.StatusForbidden, "Email verification required.")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		if !user.EmailVerified {
			return echo.NewHTTPError(http.StatusForbidden, "Email verification required.")
		}
		return next(c)
	}
}

// UserID returns the authenticated caller's id set by the guard.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(CtxUserID).(uuid.UUID)
	return id, ok
}

func IsAdmin(c echo.Context) bool {
	isAdmin, _ := c.Get(CtxIsAdmin).(bool)
	return isAdmin
}

func JTI(c echo.Context) string {
	jti, _ := c.Get(CtxJTI).(string)
	return jti
}
