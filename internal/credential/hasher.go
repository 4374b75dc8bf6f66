// Package credential hashes and verifies user secrets with bcrypt.
package credential

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes. Longer secrets are truncated, not rejected.
const maxSecretLen = 72

var (
	// ErrHashing is returned when a hash cannot be produced.
	ErrHashing = errors.New("hashing failed")

	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed hash")
)

// Hasher hashes and verifies secrets.
type Hasher interface {
	// Hash returns a salted hash; two calls with the same secret differ.
	Hash(secret string) (string, error)

	// Verify returns (false, nil) on mismatch and an error only for a malformed hash.
	Verify(secret, storedHash string) (bool, error)
}

// BcryptHasher implements Hasher with a fixed work factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost, falling back to bcrypt.DefaultCost
// when cost is outside bcrypt's range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(secret), h.cost)
	if err != nil {
		return "", oops.Code("CREDENTIAL_HASH_FAILED").Wrap(errors.Join(ErrHashing, err))
	}

	return string(hash), nil
}

func (h *BcryptHasher) Verify(secret, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), truncate(secret))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, oops.Code("CREDENTIAL_INVALID_HASH").Wrap(errors.Join(ErrMalformedHash, err))
}

// Cost returns the work factor used for new hashes.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func truncate(secret string) []byte {
	b := []byte(secret)
	if len(b) > maxSecretLen {
		return b[:maxSecretLen]
	}

	return b
}

// Compile-time check.
var _ Hasher = (*BcryptHasher)(nil)
