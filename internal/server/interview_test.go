package server

import (
	"net/http"
	"testing"

	"bankisha/internal/domain"
)

func createInterview(t *testing.T, env *testEnv, cookie *http.Cookie) (string, string) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/interview/create", map[string]string{
		"intervieweeName": "Taro Sato",
		"objective":       "Product launch story",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("create interview: status = %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeResponse(t, rec)
	token, _ := payload["shareToken"].(string)
	interview, _ := payload["interview"].(map[string]any)
	id, _ := interview["id"].(string)
	if id == "" || token == "" {
		t.Fatalf("payload = %v", payload)
	}
	return id, token
}

func TestSharedInterviewAccess(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner", domain.RoleUser)
	_, token := createInterview(t, env, owner)

	// invitee needs no session
	rec := env.do(t, http.MethodGet, "/api/interview/shared?token="+token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("shared access: status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/interview/shared?token=bogus", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bogus token: status = %d, want 404", rec.Code)
	}
}

func TestAppendMessageViaShareToken(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner", domain.RoleUser)
	id, token := createInterview(t, env, owner)

	rec := env.do(t, http.MethodPost, "/api/interview/append-message", map[string]string{
		"token":   token,
		"role":    "interviewee",
		"content": "We launched in March.",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("invitee append: status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/interview/append-message", map[string]string{
		"interviewId": id,
		"role":        "interviewer",
		"content":     "What came next?",
	}, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner append: status = %d body=%s", rec.Code, rec.Body.String())
	}

	iv, _, _ := env.store.GetInterview(id)
	if len(iv.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(iv.Transcript))
	}
	if iv.Transcript[0].Role != "interviewee" || iv.Transcript[1].Role != "interviewer" {
		t.Fatalf("transcript roles = %+v", iv.Transcript)
	}
}

func TestAppendMessageRejectsBadRole(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner", domain.RoleUser)
	_, token := createInterview(t, env, owner)

	rec := env.do(t, http.MethodPost, "/api/interview/append-message", map[string]string{
		"token":   token,
		"role":    "narrator",
		"content": "hi",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAppendMessageRequiresCredential(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner", domain.RoleUser)
	id, _ := createInterview(t, env, owner)

	rec := env.do(t, http.MethodPost, "/api/interview/append-message", map[string]string{
		"interviewId": id,
		"role":        "interviewer",
		"content":     "hello",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGenerateQuestions(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner", domain.RoleUser)
	id, _ := createInterview(t, env, owner)

	env.gen.out = `{"questions":["What problem did you set out to solve?","What surprised you?"]}`
	rec := env.do(t, http.MethodPost, "/api/interview/generate-questions", map[string]string{"interviewId": id}, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeResponse(t, rec)
	questions, _ := payload["questions"].([]any)
	if len(questions) != 2 {
		t.Fatalf("questions = %v", questions)
	}
}

func TestGenerateFromInterview(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner", domain.RoleUser)
	id, token := createInterview(t, env, owner)

	// empty transcript is rejected
	rec := env.do(t, http.MethodPost, "/api/article/generate-from-interview", map[string]string{"interviewId": id}, owner)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty transcript: status = %d, want 400", rec.Code)
	}

	env.do(t, http.MethodPost, "/api/interview/append-message", map[string]string{
		"token": token, "role": "interviewee", "content": "We grew from 3 to 50 people.",
	}, nil)

	env.gen.out = `{"title":"From 3 to 50","lead":"A growth story.","sections":[{"heading":"Beginnings","body":"Three founders."}]}`
	rec = env.do(t, http.MethodPost, "/api/article/generate-from-interview", map[string]string{"interviewId": id}, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeResponse(t, rec)
	article, _ := payload["article"].(map[string]any)
	draft, _ := article["draftArticle"].(map[string]any)
	if draft["title"] != "From 3 to 50" {
		t.Fatalf("draft = %v", draft)
	}

	iv, _, _ := env.store.GetInterview(id)
	if iv.Status != domain.InterviewDraftReady {
		t.Fatalf("interview status = %q, want draftReady", iv.Status)
	}
}
