package identity

import (
	"fmt"
	"net/http"
	"strings"

	"bankisha/internal/store"
)

// DefaultSessionCookie is the cookie name used when config leaves it unset.
const DefaultSessionCookie = "bk_session"

// SessionResolver resolves identity from a platform session cookie.
type SessionResolver struct {
	sessions   store.SessionStore
	cookieName string
}

// NewSessionResolver builds a resolver over the given session store.
func NewSessionResolver(sessions store.SessionStore, cookieName string) *SessionResolver {
	cookieName = strings.TrimSpace(cookieName)
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionResolver{sessions: sessions, cookieName: cookieName}
}

// CookieName returns the configured session cookie name.
func (s *SessionResolver) CookieName() string {
	return s.cookieName
}

// Resolve looks up the session cookie in the session store.
func (s *SessionResolver) Resolve(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", ErrUnauthenticated
	}
	userID, ok, err := s.sessions.GetUserIDByToken(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
