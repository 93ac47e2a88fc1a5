// Package fake generates placeholder test data: deterministic email
// sequences, collision-free emails, and a fixed sha1 digest for code
// paths that only need a syntactically valid hash.
package fake

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Emails returns n placeholder addresses: email_0@example.com,
// email_1@example.com, and so on. The counter restarts at zero on
// every call, so repeated calls produce the same sequence.
func Emails(n int) []string {
	emails := make([]string, 0, n)
	for i := 0; i < n; i++ {
		emails = append(emails, fmt.Sprintf("email_%d@example.com", i))
	}
	return emails
}

// Email returns the first placeholder address.
func Email() string {
	return Emails(1)[0]
}

// UniqueEmail returns a random address for fixtures that must not
// collide with rows already in the test database.
func UniqueEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])
}

// SHA1 returns the same valid sha1 hex digest on every call.
func SHA1() string {
	sum := sha1.Sum([]byte("some key"))
	return hex.EncodeToString(sum[:])
}
