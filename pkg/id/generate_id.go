package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewToken returns a 64-char lowercase hex secret backed by 32 random bytes.
// Used for single-use approval links, so a read failure is surfaced.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewNumber builds a human-facing reference such as LA-20250906-3F9A6A.
func NewNumber(prefix string, at time.Time) string {
	return prefix + "-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(NewID32()[:6])
}
