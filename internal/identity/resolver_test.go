package identity

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bankisha/internal/store"
)

type staticResolver struct {
	id  string
	err error
}

func (s staticResolver) Resolve(_ *http.Request) (string, error) {
	return s.id, s.err
}

func TestChainResolverFallsThroughOnUnauthenticated(t *testing.T) {
	chain := ChainResolver{
		staticResolver{err: ErrUnauthenticated},
		staticResolver{id: "user-b"},
	}
	id, err := chain.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || id != "user-b" {
		t.Fatalf("Resolve = %q, %v", id, err)
	}
}

func TestChainResolverStopsOnTerminalError(t *testing.T) {
	boom := errors.New("session backend down")
	chain := ChainResolver{
		staticResolver{err: boom},
		staticResolver{id: "user-b"},
	}
	if _, err := chain.Resolve(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want terminal error", err)
	}
}

func TestChainResolverExhausted(t *testing.T) {
	chain := ChainResolver{staticResolver{err: ErrUnauthenticated}}
	if _, err := chain.Resolve(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestSessionResolverReadsCookie(t *testing.T) {
	sessions := store.NewMemorySessionStore()
	token, err := sessions.NewSession("user-a")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	resolver := NewSessionResolver(sessions, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := resolver.Resolve(req); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("no cookie: err = %v, want ErrUnauthenticated", err)
	}

	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: token})
	id, err := resolver.Resolve(req)
	if err != nil || id != "user-a" {
		t.Fatalf("Resolve = %q, %v", id, err)
	}

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "stale"})
	if _, err := resolver.Resolve(bad); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("stale cookie: err = %v, want ErrUnauthenticated", err)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := BearerToken(req); ok {
		t.Fatal("empty header parsed as bearer")
	}
	req.Header.Set("Authorization", "Basic abc")
	if _, ok := BearerToken(req); ok {
		t.Fatal("basic credential parsed as bearer")
	}
	req.Header.Set("Authorization", "Bearer tok-123")
	token, ok := BearerToken(req)
	if !ok || token != "tok-123" {
		t.Fatalf("BearerToken = %q, %v", token, ok)
	}
}
