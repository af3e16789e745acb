package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bankisha/internal/app"
	"bankisha/internal/domain"
	"bankisha/internal/identity"
	"bankisha/internal/store"
)

// fakeGenerator returns canned output, recording the prompts it saw.
type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

// fakeObjects hands out deterministic URLs without touching storage and
// records deleted keys.
type fakeObjects struct {
	deleted []string
}

func (*fakeObjects) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (*fakeObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type testEnv struct {
	server   *Server
	store    *store.MemoryStore
	sessions *store.MemorySessionStore
	gen      *fakeGenerator
	objects  *fakeObjects
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	sessions := store.NewMemorySessionStore()
	gen := &fakeGenerator{out: "{}"}
	objects := &fakeObjects{}
	appCore, err := app.New(app.Config{
		Store:     st,
		Objects:   objects,
		Generator: gen,
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	srv := New(Config{
		App:      appCore,
		Resolver: identity.NewSessionResolver(sessions, ""),
		Sessions: sessions,
	})
	return &testEnv{server: srv, store: st, sessions: sessions, gen: gen, objects: objects}
}

// login seeds a user record (unless role is empty) and returns a session
// cookie for it.
func (e *testEnv) login(t *testing.T, userID string, role domain.UserRole) *http.Cookie {
	t.Helper()
	if role != "" {
		if err := e.store.SaveUser(domain.User{ID: userID, Role: role}); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}
	}
	token, err := e.sessions.NewSession(userID)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return &http.Cookie{Name: identity.DefaultSessionCookie, Value: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func mustApp(t *testing.T, st *store.MemoryStore) *app.Service {
	t.Helper()
	appCore, err := app.New(app.Config{
		Store:     st,
		Objects:   &fakeObjects{},
		Generator: &fakeGenerator{out: "{}"},
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return appCore
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return httptest.NewRequest(method, path, bytes.NewReader(raw))
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthenticatedRoutesRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)
	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/user/profile"},
		{http.MethodPost, "/api/upload"},
		{http.MethodPost, "/api/knowledge-base/create"},
		{http.MethodGet, "/api/admin/system-settings?key=x"},
	}
	for _, p := range paths {
		rec := env.do(t, p.method, p.path, map[string]string{}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
	// nothing was created behind the 401s
	list, _ := env.store.ListKnowledgeBases(store.KnowledgeFilter{Type: domain.KnowledgeUser})
	if len(list) != 0 {
		t.Error("anonymous request mutated the store")
	}
}

func TestProfileDefaultsToUserRole(t *testing.T) {
	env := newTestEnv(t)
	// session exists but no user record was ever written
	cookie := env.login(t, "newcomer", "")

	rec := env.do(t, http.MethodGet, "/api/user/profile", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeResponse(t, rec)
	if payload["id"] != "newcomer" || payload["role"] != "user" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestUploadReturnsPresignedURL(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "u1", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/upload", map[string]string{
		"filename":    "report.pdf",
		"contentType": "application/pdf",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeResponse(t, rec)
	key, _ := payload["key"].(string)
	url, _ := payload["url"].(string)
	if len(key) < len("uploads/")+len("-report.pdf") || key[:8] != "uploads/" {
		t.Errorf("key = %q", key)
	}
	if key[len(key)-len("-report.pdf"):] != "-report.pdf" {
		t.Errorf("key suffix = %q", key)
	}
	if url == "" {
		t.Error("missing url")
	}
}

func TestUploadRejectsPathTraversal(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "u1", domain.RoleUser)
	rec := env.do(t, http.MethodPost, "/api/upload", map[string]string{"filename": "../etc/passwd"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateProfileResolvesCompanyOnce(t *testing.T) {
	env := newTestEnv(t)
	first := env.login(t, "u1", domain.RoleUser)
	second := env.login(t, "u2", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/user/update-profile", map[string]string{
		"displayName": "Alice",
		"companyName": " Acme Inc ",
	}, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first update: status = %d body=%s", rec.Code, rec.Body.String())
	}
	firstCompany := decodeResponse(t, rec)["companyId"]

	rec = env.do(t, http.MethodPost, "/api/user/update-profile", map[string]string{
		"companyName": "Acme Inc",
	}, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("second update: status = %d", rec.Code)
	}
	secondCompany := decodeResponse(t, rec)["companyId"]

	if firstCompany == "" || firstCompany != secondCompany {
		t.Fatalf("company ids differ: %v vs %v", firstCompany, secondCompany)
	}

	user, ok, _ := env.store.GetUser("u1")
	if !ok || user.DisplayName != "Alice" || user.CompanyID != firstCompany {
		t.Fatalf("user not merged: %+v", user)
	}
}

func TestFeedbackCreateValidatesRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "u1", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/feedback/create", map[string]string{"message": "hi"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.store.FeedbackCount() != 0 {
		t.Fatal("invalid feedback stored")
	}

	rec = env.do(t, http.MethodPost, "/api/feedback/create", map[string]string{
		"companyId": "c1",
		"source":    "interview",
		"type":      "bug",
		"message":   "transcript froze",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if env.store.FeedbackCount() != 1 {
		t.Fatal("feedback not stored")
	}
}

func seedArticle(t *testing.T, st *store.MemoryStore, id, author string, draft *domain.ArticleDraft, status domain.ArticleStatus) {
	t.Helper()
	err := st.CreateArticle(domain.Article{
		ID:       id,
		AuthorID: author,
		Draft:    draft,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
}

func sampleDraft() *domain.ArticleDraft {
	return &domain.ArticleDraft{
		Title: "How we scaled",
		Lead:  "An interview about scaling.",
		Sections: []domain.ArticleSection{
			{Heading: "Start", Body: "We started small."},
		},
	}
}

func TestGenerateMetadataRequiresDraft(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "author", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/article/generate-metadata", map[string]string{"articleId": "missing"}, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing article: status = %d, want 404", rec.Code)
	}

	seedArticle(t, env.store, "a1", "author", nil, domain.ArticleStatusDraft)
	rec = env.do(t, http.MethodPost, "/api/article/generate-metadata", map[string]string{"articleId": "a1"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("draftless article: status = %d, want 400", rec.Code)
	}
	article, _, _ := env.store.GetArticle("a1")
	if article.AIMetadata != nil {
		t.Fatal("metadata written on failed generation")
	}
}

func TestGenerateMetadataOverwritesWhole(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "author", domain.RoleUser)
	seedArticle(t, env.store, "a1", "author", sampleDraft(), domain.ArticleStatusDraft)

	env.gen.out = `{"title":"How we scaled","tags":["scaling"],"category":"engineering"}`
	rec := env.do(t, http.MethodPost, "/api/article/generate-metadata", map[string]string{"articleId": "a1"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	env.gen.out = `{"title":"Second run"}`
	rec = env.do(t, http.MethodPost, "/api/article/generate-metadata", map[string]string{"articleId": "a1"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("second run: status = %d", rec.Code)
	}

	article, _, _ := env.store.GetArticle("a1")
	var meta map[string]any
	if err := json.Unmarshal(article.AIMetadata, &meta); err != nil {
		t.Fatalf("decode stored metadata: %v", err)
	}
	if meta["title"] != "Second run" {
		t.Errorf("title = %v", meta["title"])
	}
	if _, leftover := meta["tags"]; leftover {
		t.Error("old metadata fields survived the overwrite")
	}
}

func TestGenerateMetadataProviderFailureLeavesArticleUntouched(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "author", domain.RoleUser)
	seedArticle(t, env.store, "a1", "author", sampleDraft(), domain.ArticleStatusDraft)

	env.gen.err = fmt.Errorf("provider unavailable")
	rec := env.do(t, http.MethodPost, "/api/article/generate-metadata", map[string]string{"articleId": "a1"}, cookie)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	article, _, _ := env.store.GetArticle("a1")
	if article.AIMetadata != nil {
		t.Fatal("metadata written despite provider failure")
	}
}

func TestGenerateMetadataForbiddenForOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	seedArticle(t, env.store, "a1", "author", sampleDraft(), domain.ArticleStatusDraft)
	stranger := env.login(t, "stranger", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/article/generate-metadata", map[string]string{"articleId": "a1"}, stranger)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
