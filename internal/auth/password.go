package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a password hashing scheme.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// ErrUnknownAlgorithm is returned for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")

// Hasher hashes new passwords with a configured algorithm and verifies
// hashes produced by any supported algorithm. Bcrypt hashes are accepted
// so records imported from older deployments keep working.
type Hasher struct {
	algorithm  Algorithm
	bcryptCost int
}

// NewHasher returns a Hasher for the named algorithm.
// An empty name selects Argon2id.
func NewHasher(name string) (*Hasher, error) {
	algo := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if algo == "" {
		algo = AlgorithmArgon2id
	}

	switch algo {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}

	return &Hasher{algorithm: algo, bcryptCost: bcrypt.DefaultCost}, nil
}

// Algorithm returns the algorithm used for new hashes.
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Hash returns a one-way hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(hashed), nil
	}
	return HashArgon2id(password)
}

// Verify reports whether password matches encodedHash.
// A mismatch is not an error; a malformed hash is.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, argon2Prefix):
		return VerifyArgon2id(password, encodedHash)
	case isBcryptHash(encodedHash):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, ErrInvalidHash
	default:
		return false, ErrInvalidHash
	}
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
