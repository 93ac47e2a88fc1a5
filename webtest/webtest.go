// Package webtest spins up authenticated HTTP clients against a
// handler under test, so request-level tests don't repeat the
// register-then-login dance.
package webtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TokenLifetime is how long tokens minted for tests stay valid. Long
// enough for any test run, short enough not to matter if one leaks
// into a log.
const TokenLifetime = time.Hour

// UserToken mints an HS256 bearer token for the given user, signed
// with the handler's secret.
func UserToken(t *testing.T, userID uuid.UUID, secret string) string {
	t.Helper()

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err, "Failed to sign test token")
	return token
}

// HashPassword bcrypt-hashes a plaintext password for seeding stored
// users that a login flow must verify against.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err, "Failed to hash password")
	return string(hashed)
}

// LoggedInClient starts a test server over the handler and returns it
// together with a client whose every request carries a bearer token
// for the given user. The server is shut down when the test finishes.
func LoggedInClient(t *testing.T, handler http.Handler, userID uuid.UUID, secret string) (*httptest.Server, *http.Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.Transport = &bearerTransport{
		token: UserToken(t, userID, secret),
		next:  client.Transport,
	}

	return srv, client
}

// bearerTransport attaches the Authorization header to every request.
type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (bt *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per the RoundTripper contract the request must not be mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+bt.token)

	next := bt.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(clone)
}

// FindForm returns the first form carrying all the required field
// names, iterating forms in a stable key order. It errors when no form
// matches, listing the fields that were asked for.
func FindForm(forms map[string]url.Values, fields ...string) (url.Values, error) {
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		form := forms[name]
		all := true
		for _, field := range fields {
			if !form.Has(field) {
				all = false
				break
			}
		}
		if all {
			return form, nil
		}
	}

	return nil, fmt.Errorf("webtest: form with fields %s does not exist", strings.Join(fields, ", "))
}
