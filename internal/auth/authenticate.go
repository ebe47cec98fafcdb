package auth

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const bearerScheme = "Bearer"

// Authenticator turns an Authorization header into an Identity. Every
// resource handler runs this exactly once per request; nothing is cached
// between requests.
type Authenticator struct {
	codec *Codec
}

func NewAuthenticator(codec *Codec) *Authenticator {
	return &Authenticator{codec: codec}
}

// Authenticate validates a raw Authorization header value. A refresh token
// never authenticates a resource request: only kind=access passes.
func (a *Authenticator) Authenticate(header string) (core.Identity, error) {
	if header == "" {
		return core.Identity{}, ErrMissingCredentials
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) || strings.TrimSpace(token) == "" {
		return core.Identity{}, ErrMalformedCredentials
	}

	cl, err := a.codec.Verify(strings.TrimSpace(token))
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if cl.Kind != TokenKindAccess {
		return core.Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, ErrWrongTokenKind)
	}

	return core.Identity{ID: cl.UserID, Role: cl.Role}, nil
}
