// Package identity resolves a verified caller identifier from an incoming
// request. Two mechanisms coexist: a platform session cookie checked against
// the session store, and a bearer token verified against the identity
// provider's JWKS. Handlers see only the Resolver interface and never know
// which mechanism produced the identifier.
package identity

import (
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthenticated reports a missing or invalid caller credential.
var ErrUnauthenticated = errors.New("unauthenticated")

// Resolver resolves the verified caller identifier for a request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ChainResolver tries each resolver in order, selected by request shape: a
// resolver returning ErrUnauthenticated passes the request on; any other
// error is terminal.
type ChainResolver []Resolver

// Resolve returns the first successfully resolved identifier.
func (c ChainResolver) Resolve(r *http.Request) (string, error) {
	for _, resolver := range c {
		id, err := resolver.Resolve(r)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return "", err
		}
	}
	return "", ErrUnauthenticated
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
