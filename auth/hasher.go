// Package auth holds the credential primitives of the todo service: bcrypt
// password digests and stateless HS256 access tokens.
package auth

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit; golang.org/x/crypto rejects
// longer inputs outright.
const maxPasswordBytes = 72

// Hasher turns passwords into salted bcrypt digests and checks them.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is
// outside bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted digest of password. Passwords longer than 72 bytes
// are cut to 72 bytes first, dropping a multi-byte character split by the cut,
// so two passwords sharing their first 72 bytes hash alike.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncate(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. A malformed digest never
// matches.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) <= maxPasswordBytes {
		return b
	}
	b = b[:maxPasswordBytes]
	for len(b) > 0 {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size > 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
