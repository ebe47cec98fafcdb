package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

type fakeUserStore struct {
	users map[string]core.User
}

func (f *fakeUserStore) UserByUsername(_ context.Context, username string) (core.User, error) {
	u, ok := f.users[username]
	if !ok {
		return core.User{}, errors.New("user not found")
	}
	return u, nil
}

func newTestSessions(t *testing.T) (*Sessions, *Codec) {
	t.Helper()

	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	hasher := NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	store := &fakeUserStore{users: map[string]core.User{
		"alice": {
			ID:           "alice-id",
			Username:     "alice",
			Email:        "alice@x.com",
			PasswordHash: hash,
			Role:         core.RoleUser,
		},
	}}

	return NewSessions(store, hasher, codec, 4), codec
}

func TestSessions_LoginSuccess(t *testing.T) {
	sessions, codec := newTestSessions(t)

	pair, user, err := sessions.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice-id", user.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice-id", access.UserID)
	assert.Equal(t, TokenKindAccess, access.Kind)

	refresh, err := codec.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenKindRefresh, refresh.Kind)
}

// "No such user" and "wrong password" must be indistinguishable.
func TestSessions_LoginNonEnumeration(t *testing.T) {
	sessions, _ := newTestSessions(t)

	_, _, errUnknown := sessions.Login(context.Background(), "nobody", "password123")
	_, _, errWrongPass := sessions.Login(context.Background(), "alice", "wrongpass")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestSessions_Refresh(t *testing.T) {
	sessions, codec := newTestSessions(t)

	pair, _, err := sessions.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	access, err := sessions.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	cl, err := codec.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, "alice-id", cl.UserID)
	assert.Equal(t, TokenKindAccess, cl.Kind)
}

// An access token must not be replayed as a refresh token.
func TestSessions_RefreshRejectsAccessToken(t *testing.T) {
	sessions, _ := newTestSessions(t)

	pair, _, err := sessions.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	_, err = sessions.Refresh(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestSessions_RefreshInvalidToken(t *testing.T) {
	sessions, _ := newTestSessions(t)

	_, err := sessions.Refresh(context.Background(), "not.a.token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestSessions_HashPassword(t *testing.T) {
	sessions, _ := newTestSessions(t)

	hash, err := sessions.HashPassword(context.Background(), "hunter2hunter2")
	require.NoError(t, err)
	assert.True(t, NewHasher(bcrypt.MinCost).Verify("hunter2hunter2", hash))
}

func TestSessions_HashPasswordCancelled(t *testing.T) {
	sessions, _ := newTestSessions(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// With the context already cancelled the semaphore acquire fails and no
	// hashing work is started.
	s := NewSessions(nil, NewHasher(bcrypt.MinCost), sessions.codec, 1)
	require.NoError(t, s.sem.Acquire(context.Background(), 1))
	_, err := s.HashPassword(ctx, "password123")
	require.Error(t, err)
}
