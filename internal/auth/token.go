package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/core"
)

// TokenKind discriminates the two token flavors sharing one codec.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Default validity windows. Access tokens are short-lived; refresh tokens
// live long enough to span a session without a server-side session table.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type claims struct {
	jwt.RegisteredClaims
	Role core.Role `json:"role"`
	Kind TokenKind `json:"kind"`
}

// TokenClaims is the decoded, validated payload of a token. Kind is left
// for the caller to check: the codec stays generic over both kinds.
type TokenClaims struct {
	UserID string
	Role   core.Role
	Kind   TokenKind
}

// Codec issues and verifies signed, time-bound tokens. The secret is loaded
// once at construction and treated as immutable for the process lifetime.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// CodecOption adjusts a Codec at construction time.
type CodecOption func(*Codec)

// WithTTLs overrides the default validity windows.
func WithTTLs(access, refresh time.Duration) CodecOption {
	return func(c *Codec) {
		if access > 0 {
			c.accessTTL = access
		}
		if refresh > 0 {
			c.refreshTTL = refresh
		}
	}
}

// WithClock injects the time source, used by tests to simulate expiry.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec fails with ErrNoSecret when the secret is empty. Callers treat
// that as fatal at startup, not as a per-request error.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	c := &Codec{
		secret:     secret,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue encodes {subject, role, kind} with issued-at and expiry computed
// from the kind, signed HS256 with the process-wide secret.
func (c *Codec) Issue(userID string, role core.Role, kind TokenKind) (string, error) {
	var ttl time.Duration
	switch kind {
	case TokenKindAccess:
		ttl = c.accessTTL
	case TokenKindRefresh:
		ttl = c.refreshTTL
	default:
		return "", fmt.Errorf("issue token: unknown kind %q", kind)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
		Kind: kind,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and decodes the payload. It fails with
// ErrTokenExpired past the expiry and ErrTokenMalformed for everything else
// (bad signature, wrong algorithm, garbage input, unknown role or kind).
// It does NOT check kind-appropriateness; that is the caller's job.
func (c *Codec) Verify(tokenString string) (TokenClaims, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(tokenString, &cl,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, ErrTokenMalformed
	}
	if !token.Valid || cl.Subject == "" {
		return TokenClaims{}, ErrTokenMalformed
	}

	// Role is a closed enum: a token with an unexpected role value never
	// becomes an identity.
	role, err := core.ParseRole(string(cl.Role))
	if err != nil {
		return TokenClaims{}, ErrTokenMalformed
	}
	switch cl.Kind {
	case TokenKindAccess, TokenKindRefresh:
	default:
		return TokenClaims{}, ErrTokenMalformed
	}

	return TokenClaims{UserID: cl.Subject, Role: role, Kind: cl.Kind}, nil
}
