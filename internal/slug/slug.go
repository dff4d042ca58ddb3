// Package slug generates and validates the public URL identifiers
// businesses share with their customers.
package slug

import (
	"crypto/rand"
	"regexp"
)

const (
	// Length is the size of generated slugs.
	Length = 8

	// MinLength and MaxLength bound user-chosen slugs.
	MinLength = 3
	MaxLength = 30

	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var validSlug = regexp.MustCompile(`^[a-z0-9-]+$`)

// New returns a random 8-character lowercase alphanumeric slug.
func New() string {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand read failure is unrecoverable anyway.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}

// Validate checks a user-chosen slug. Returns an empty string when the
// slug is acceptable, otherwise a human-readable reason.
func Validate(s string) string {
	if s == "" {
		return "slug is required"
	}
	if !validSlug.MatchString(s) {
		return "slug can only contain lowercase letters, numbers, and hyphens"
	}
	if len(s) < MinLength || len(s) > MaxLength {
		return "slug must be between 3 and 30 characters"
	}
	return ""
}
