// Package auth implements the authentication core: password hashing, the
// token codec, session issuance (login/refresh), and per-request
// authentication. Everything here is stateless between requests; token
// validity is entirely a function of the signature and expiry embedded in
// the token itself.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"fintrack/internal/core"
)

// UserStore is the single storage dependency of the session issuer. Any
// lookup failure collapses into ErrInvalidCredentials on login.
type UserStore interface {
	UserByUsername(ctx context.Context, username string) (core.User, error)
}

// TokenPair is what a successful login hands to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Sessions orchestrates login and refresh. bcrypt is the one intentionally
// slow operation in the process, so hashing work is bounded by a weighted
// semaphore: unrelated requests keep flowing while hashes run.
type Sessions struct {
	users  UserStore
	hasher *Hasher
	codec  *Codec
	sem    *semaphore.Weighted
}

// NewSessions builds a session issuer. maxConcurrentHashes bounds how many
// bcrypt computations may run at once; values below 1 fall back to 1.
func NewSessions(users UserStore, hasher *Hasher, codec *Codec, maxConcurrentHashes int64) *Sessions {
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = 1
	}
	return &Sessions{
		users:  users,
		hasher: hasher,
		codec:  codec,
		sem:    semaphore.NewWeighted(maxConcurrentHashes),
	}
}

// Login checks the credentials and issues an access/refresh token pair.
// "No such user" and "wrong password" return the identical error so the
// endpoint cannot be used to enumerate usernames.
func (s *Sessions) Login(ctx context.Context, username, password string) (TokenPair, core.User, error) {
	user, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		slog.DebugContext(ctx, "login lookup failed", "error", err)
		return TokenPair{}, core.User{}, ErrInvalidCredentials
	}

	ok, err := s.verifyPassword(ctx, password, user.PasswordHash)
	if err != nil {
		return TokenPair{}, core.User{}, err
	}
	if !ok {
		return TokenPair{}, core.User{}, ErrInvalidCredentials
	}

	access, err := s.codec.Issue(user.ID, user.Role, TokenKindAccess)
	if err != nil {
		return TokenPair{}, core.User{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(user.ID, user.Role, TokenKindRefresh)
	if err != nil {
		return TokenPair{}, core.User{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Refresh verifies a refresh token and mints a new access token. Refresh
// tokens are not rotated on use and there is no revocation list; a leaked
// refresh token stays valid until its natural expiry.
func (s *Sessions) Refresh(ctx context.Context, refreshToken string) (string, error) {
	cl, err := s.codec.Verify(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	if cl.Kind != TokenKindRefresh {
		// An access token must never be replayed as a refresh token.
		return "", ErrWrongTokenKind
	}

	access, err := s.codec.Issue(cl.UserID, cl.Role, TokenKindAccess)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// HashPassword runs bcrypt under the same semaphore as login verification,
// for use by registration.
func (s *Sessions) HashPassword(ctx context.Context, password string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hash slot: %w", err)
	}
	defer s.sem.Release(1)
	return s.hasher.Hash(password)
}

func (s *Sessions) verifyPassword(ctx context.Context, password, hash string) (bool, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("acquire hash slot: %w", err)
	}
	defer s.sem.Release(1)
	return s.hasher.Verify(password, hash), nil
}
