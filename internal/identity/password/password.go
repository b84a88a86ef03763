// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the bcrypt input ceiling in bytes.
const MaxLength = 72

// ErrTooLong is returned when a password exceeds MaxLength bytes.
var ErrTooLong = errors.New("password cannot be longer than 72 bytes")

// Hasher hashes passwords with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt digest of secret.
// Secrets longer than MaxLength bytes are rejected, never truncated.
func (h *Hasher) Hash(secret string) (string, error) {
	if len(secret) > MaxLength {
		return "", ErrTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. Malformed digests never match.
// bcrypt only reads the first MaxLength bytes, so longer secrets are refused
// outright instead of matching the digest of their prefix.
func (h *Hasher) Verify(secret, digest string) bool {
	if len(secret) > MaxLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
