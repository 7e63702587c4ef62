package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. Every token carries one and decoding checks it before any
// other claim is trusted, so a verification token can never be presented as
// an access token even though all three share the signing key.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
	PurposeVerify  = "verify"
)

var (
	ErrTokenMalformed   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrWrongPurpose     = errors.New("wrong token purpose")
	ErrTokenInvalid     = errors.New("invalid token")
)

type Claims struct {
	Purpose string `json:"purpose"`
	Fresh   bool   `json:"fresh,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// Codec mints and parses HS256-signed claim bundles. The signing secret is
// injected at construction and never read from ambient state.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
}

func NewCodec(secret []byte, accessTTL, refreshTTL, verifyTTL time.Duration) *Codec {
	if accessTTL <= 0 {
		accessTTL = 120 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if verifyTTL <= 0 {
		verifyTTL = time.Hour
	}
	return &Codec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		verifyTTL:  verifyTTL,
	}
}

func NewJTI() string { return uuid.NewString() }

func (c *Codec) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

func (c *Codec) MintAccess(userID string, isAdmin, fresh bool) (string, *Claims, error) {
	claims := Claims{
		Purpose: PurposeAccess,
		Fresh:   fresh,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        NewJTI(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := c.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return s, &claims, nil
}

func (c *Codec) MintRefresh(userID string) (string, *Claims, error) {
	claims := Claims{
		Purpose: PurposeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        NewJTI(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := c.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return s, &claims, nil
}

func (c *Codec) MintVerification(userID string) (string, error) {
	claims := Claims{
		Purpose: PurposeVerify,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.verifyTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return c.sign(claims)
}

// ParseAny verifies the signature and expiry and returns the claims without
// restricting the purpose. Callers that accept only one purpose must use the
// purpose-specific variants.
func (c *Codec) ParseAny(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, translateErr(err)
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Purpose == "" {
		return nil, ErrWrongPurpose
	}
	return &claims, nil
}

func (c *Codec) parse(tokenStr, purpose string) (*Claims, error) {
	claims, err := c.ParseAny(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (c *Codec) ParseAccess(tokenStr string) (*Claims, error) {
	return c.parse(tokenStr, PurposeAccess)
}

func (c *Codec) ParseRefresh(tokenStr string) (*Claims, error) {
	return c.parse(tokenStr, PurposeRefresh)
}

// ParseVerification decodes an email-verification token to the user id it
// names. Verification tokens carry nothing else.
func (c *Codec) ParseVerification(tokenStr string) (string, error) {
	claims, err := c.parse(tokenStr, PurposeVerify)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func translateErr(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenInvalid
	}
}
