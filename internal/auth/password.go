package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost matches the work factor of the stored credential base.
const DefaultHashCost = 10

// Hasher performs one-way password hashing with a per-call random salt
// embedded in the output. The cost is tunable to keep offline brute force
// expensive as hardware improves.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash never fails for well-formed input; an error here means the bcrypt
// primitive itself is unavailable.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. Any mismatch,
// including a malformed stored hash, is false rather than an error, so
// callers cannot leak the distinction.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
