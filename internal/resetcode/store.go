// Package resetcode keeps short-lived password reset codes outside process memory.
package resetcode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Store keeps one pending code per email.
type Store interface {
	// Put replaces any pending code for email and resets its failed attempts.
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume reports whether code matches the pending one for email and, if so,
	// removes it. A miss counts as a failed attempt; after MaxAttempts misses the
	// pending code is discarded.
	Consume(ctx context.Context, email, code string) (bool, error)
}

const codeDigits = 6

// MaxAttempts is the number of wrong guesses that discards a pending code.
const MaxAttempts = 5

// Generate returns a random numeric code.
func Generate() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
