package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestAuthenticator_Success(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)
	authn := NewAuthenticator(codec)

	signed, err := codec.Issue("user-123", core.RoleElevated, TokenKindAccess)
	require.NoError(t, err)

	identity, err := authn.Authenticate("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, core.Identity{ID: "user-123", Role: core.RoleElevated}, identity)

	// Scheme comparison is case-insensitive.
	identity, err = authn.Authenticate("bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.ID)
}

func TestAuthenticator_HeaderShapes(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)
	authn := NewAuthenticator(codec)

	signed, err := codec.Issue("user-123", core.RoleUser, TokenKindAccess)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"empty header", "", ErrMissingCredentials},
		{"no scheme", signed, ErrMalformedCredentials},
		{"wrong scheme", "Basic " + signed, ErrMalformedCredentials},
		{"scheme only", "Bearer ", ErrMalformedCredentials},
		{"garbage token", "Bearer garbage", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authn.Authenticate(tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// A refresh token never authenticates a resource request, even though its
// signature is valid.
func TestAuthenticator_RejectsRefreshToken(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)
	authn := NewAuthenticator(codec)

	refresh, err := codec.Issue("user-123", core.RoleUser, TokenKindRefresh)
	require.NoError(t, err)

	_, err = authn.Authenticate("Bearer " + refresh)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, ErrWrongTokenKind)
}
