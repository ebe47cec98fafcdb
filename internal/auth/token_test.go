package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestNewCodec_NoSecret(t *testing.T) {
	_, err := NewCodec(nil)
	require.ErrorIs(t, err, ErrNoSecret)

	_, err = NewCodec([]byte{})
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		kind TokenKind
	}{
		{"access token", TokenKindAccess},
		{"refresh token", TokenKindRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := codec.Issue("user-123", core.RoleUser, tt.kind)
			require.NoError(t, err)

			cl, err := codec.Verify(signed)
			require.NoError(t, err)
			assert.Equal(t, "user-123", cl.UserID)
			assert.Equal(t, core.RoleUser, cl.Role)
			assert.Equal(t, tt.kind, cl.Kind)
		})
	}
}

func TestCodec_UnknownKind(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	_, err = codec.Issue("user-123", core.RoleUser, TokenKind("session"))
	require.Error(t, err)
}

func TestCodec_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt

	codec, err := NewCodec([]byte("test-secret"),
		WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	signed, err := codec.Issue("user-123", core.RoleUser, TokenKindAccess)
	require.NoError(t, err)

	// Accepted at any time strictly before expiry.
	clock = issuedAt.Add(DefaultAccessTTL - time.Second)
	_, err = codec.Verify(signed)
	require.NoError(t, err)

	// Rejected once the clock passes expiresAt.
	clock = issuedAt.Add(DefaultAccessTTL + time.Second)
	_, err = codec.Verify(signed)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_CustomTTLs(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt

	codec, err := NewCodec([]byte("test-secret"),
		WithTTLs(time.Minute, time.Hour),
		WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	access, err := codec.Issue("u1", core.RoleUser, TokenKindAccess)
	require.NoError(t, err)
	refresh, err := codec.Issue("u1", core.RoleUser, TokenKindRefresh)
	require.NoError(t, err)

	clock = issuedAt.Add(2 * time.Minute)
	_, err = codec.Verify(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = codec.Verify(refresh)
	assert.NoError(t, err)
}

func TestCodec_WrongSecret(t *testing.T) {
	issuer, err := NewCodec([]byte("right-secret"))
	require.NoError(t, err)
	verifier, err := NewCodec([]byte("wrong-secret"))
	require.NoError(t, err)

	signed, err := issuer.Issue("user-123", core.RoleUser, TokenKindAccess)
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestCodec_Malformed(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	for _, tokenString := range []string{"", "not.a.jwt", "garbage"} {
		_, err := codec.Verify(tokenString)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tokenString)
	}
}

// A validly signed token with an out-of-enum role or kind must not verify.
func TestCodec_UnexpectedClaims(t *testing.T) {
	secret := []byte("test-secret")
	codec, err := NewCodec(secret)
	require.NoError(t, err)

	sign := func(role, kind, sub string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  sub,
			"role": role,
			"kind": kind,
			"iat":  time.Now().Unix(),
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		signed, err := tok.SignedString(secret)
		require.NoError(t, err)
		return signed
	}

	tests := []struct {
		name  string
		token string
	}{
		{"unknown role", sign("superadmin", "access", "u1")},
		{"unknown kind", sign("user", "session", "u1")},
		{"empty subject", sign("user", "access", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}
