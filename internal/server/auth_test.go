package server

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"bankisha/internal/identity"
	"bankisha/internal/store"
)

func newJWKSServer(t *testing.T, kid string, key *rsa.PublicKey) *httptest.Server {
	t.Helper()
	jwk := map[string]string{
		"kty": "RSA",
		"kid": kid,
		"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{jwk}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionExchangeIssuesCookie(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	jwks := newJWKSServer(t, "kid-1", &key.PublicKey)

	verifier, err := identity.NewVerifier(identity.VerifierConfig{
		JWKSURL:  jwks.URL,
		Issuer:   "issuer-a",
		Audience: "bankisha",
	})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	st := store.NewMemoryStore()
	sessions := store.NewMemorySessionStore()
	srv := New(Config{
		App:      mustApp(t, st),
		Resolver: identity.NewSessionResolver(sessions, ""),
		Verifier: verifier,
		Sessions: sessions,
	})

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "user-a",
		Issuer:    "issuer-a",
		Audience:  jwt.ClaimStrings{"bankisha"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	token.Header["kid"] = "kid-1"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := serve(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("exchange: status = %d body=%s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == identity.DefaultSessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("session cookie not issued")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	// the issued cookie authenticates further requests
	profile := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	profile.AddCookie(sessionCookie)
	rec = serve(srv, profile)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile with cookie: status = %d", rec.Code)
	}
	if got := decodeResponse(t, rec)["id"]; got != "user-a" {
		t.Fatalf("profile id = %v", got)
	}

	// logout invalidates the session
	logout := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	logout.AddCookie(sessionCookie)
	if rec = serve(srv, logout); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	profile = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	profile.AddCookie(sessionCookie)
	if rec = serve(srv, profile); rec.Code != http.StatusUnauthorized {
		t.Fatalf("profile after logout: status = %d, want 401", rec.Code)
	}
}

func TestSessionExchangeRejectsBadToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	jwks := newJWKSServer(t, "kid-1", &key.PublicKey)

	verifier, err := identity.NewVerifier(identity.VerifierConfig{JWKSURL: jwks.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	sessions := store.NewMemorySessionStore()
	srv := New(Config{
		App:      mustApp(t, store.NewMemoryStore()),
		Resolver: identity.NewSessionResolver(sessions, ""),
		Verifier: verifier,
		Sessions: sessions,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	rec := serve(srv, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = serve(srv, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}
