package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return NewCodec([]byte("test-jwt-secret"), 15*time.Minute, 24*time.Hour, time.Hour)
}

func TestCodec_MintAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	userID := uuid.NewString()

	token, minted, err := codec.MintAccess(userID, true, true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.ParseAccess(token)
	require.NoError(t, err)

	assert.Equal(t, PurposeAccess, claims.Purpose)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, minted.ID, claims.ID)
	assert.True(t, claims.IsAdmin)
	assert.True(t, claims.Fresh)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestCodec_MintRefresh_NotFreshNoAdmin(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	userID := uuid.NewString()

	token, minted, err := codec.MintRefresh(userID)
	require.NoError(t, err)
	require.NotEmpty(t, minted.ID)

	claims, err := codec.ParseRefresh(token)
	require.NoError(t, err)

	assert.Equal(t, PurposeRefresh, claims.Purpose)
	assert.Equal(t, userID, claims.Subject)
	assert.False(t, claims.Fresh)
	assert.False(t, claims.IsAdmin)
}

func TestCodec_EachMintGetsUniqueJTI(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	userID := uuid.NewString()

	_, first, err := codec.MintAccess(userID, false, false)
	require.NoError(t, err)
	_, second, err := codec.MintAccess(userID, false, false)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestCodec_Parse_WrongPurpose(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	userID := uuid.NewString()

	access, _, err := codec.MintAccess(userID, false, true)
	require.NoError(t, err)
	refresh, _, err := codec.MintRefresh(userID)
	require.NoError(t, err)
	verify, err := codec.MintVerification(userID)
	require.NoError(t, err)

	_, err = codec.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = codec.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = codec.ParseAccess(verify)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = codec.ParseVerification(access)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}

func TestCodec_Parse_WrongSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	other := NewCodec([]byte("another-secret"), 15*time.Minute, 24*time.Hour, time.Hour)

	token, _, err := codec.MintAccess(uuid.NewString(), false, false)
	require.NoError(t, err)

	_, err = other.ParseAccess(token)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Parse_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-jwt-secret"), -time.Minute, -time.Minute, -time.Minute)
	// Negative TTLs fall back to defaults, so mint against an explicit codec.
	short := &Codec{
		secret:     []byte("test-jwt-secret"),
		accessTTL:  -time.Minute,
		refreshTTL: -time.Minute,
		verifyTTL:  -time.Minute,
	}

	token, _, err := short.MintAccess(uuid.NewString(), false, false)
	require.NoError(t, err)

	_, err = codec.ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_Parse_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	_, err := codec.ParseAccess("not-a-valid-jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestCodec_ParseVerification_ReturnsSubject(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	userID := uuid.NewString()

	token, err := codec.MintVerification(userID)
	require.NoError(t, err)

	sub, err := codec.ParseVerification(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)
}
