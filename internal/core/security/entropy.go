package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const entropyBytes = 16

// NewGrammarID returns a random (v4) UUID string.
// uuid.NewRandom reads from crypto/rand, so ids are not guessable.
func NewGrammarID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate grammar id: %w", err)
	}
	return id.String(), nil
}

// NewEntropy creates the value a payload must echo back.
//
// Returns:
//   - "entropy-" followed by 32 hex characters from crypto/rand
//
// Example:
//
//	entropy, err := NewEntropy() // "entropy-9f86d081884c7d659a2feaa0c55ad015"
func NewEntropy() (string, error) {
	// 1. Generate random bytes using crypto/rand (cryptographically secure)
	bytes := make([]byte, entropyBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// 2. Add prefix so the value is recognisable in logs and payloads
	return "entropy-" + hex.EncodeToString(bytes), nil
}

// Equal compares two secrets in constant time
func Equal(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
