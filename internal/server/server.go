// Package server exposes the HTTP API: the authenticated application
// routes, the public media routes, and the internal processing endpoint.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bankisha/internal/app"
	"bankisha/internal/identity"
	"bankisha/internal/processor"
	"bankisha/internal/ratelimit"
	"bankisha/internal/servicetoken"
	"bankisha/internal/store"
	"bankisha/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App       *app.Service
	Resolver  identity.Resolver
	Verifier  *identity.Verifier
	Sessions  store.SessionStore
	Processor *processor.Processor

	ServiceVerifier *servicetoken.Verifier
	PublicLimiter   *ratelimit.FixedWindowLimiter

	SessionCookieName string
	SessionTTL        time.Duration
}

// Server exposes the HTTP endpoints.
type Server struct {
	app       *app.Service
	resolver  identity.Resolver
	verifier  *identity.Verifier
	sessions  store.SessionStore
	processor *processor.Processor

	serviceVerifier *servicetoken.Verifier
	publicLimiter   *ratelimit.FixedWindowLimiter

	sessionCookieName string
	sessionTTL        time.Duration

	mux *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	cookieName := cfg.SessionCookieName
	if cookieName == "" {
		cookieName = identity.DefaultSessionCookie
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	s := &Server{
		app:               cfg.App,
		resolver:          cfg.Resolver,
		verifier:          cfg.Verifier,
		sessions:          cfg.Sessions,
		processor:         cfg.Processor,
		serviceVerifier:   cfg.ServiceVerifier,
		publicLimiter:     cfg.PublicLimiter,
		sessionCookieName: cookieName,
		sessionTTL:        sessionTTL,
		mux:               http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/session", s.handleSessionExchange)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)

	// admin
	s.mux.Handle("/api/admin/system-settings", s.authenticated(s.handleSystemSettings))

	// uploads + knowledge base
	s.mux.Handle("/api/upload", s.authenticated(s.handleUpload))
	s.mux.Handle("/api/knowledge-base/create", s.authenticated(s.handleKnowledgeCreate))
	s.mux.Handle("/api/knowledge-base/list", s.authenticated(s.handleKnowledgeList))
	s.mux.Handle("/api/knowledge-base/restore", s.authenticated(s.handleKnowledgeRestore))
	s.mux.Handle("/api/knowledge-base/regenerate", s.authenticated(s.handleKnowledgeRegenerate))
	s.mux.Handle("/api/knowledge-base/delete", s.authenticated(s.handleKnowledgeDelete))

	// articles
	s.mux.Handle("/api/article/generate-metadata", s.authenticated(s.handleGenerateMetadata))
	s.mux.Handle("/api/article/generate-from-interview", s.authenticated(s.handleGenerateFromInterview))
	s.mux.Handle("/api/article/publish", s.authenticated(s.handleArticlePublish))

	// interviews
	s.mux.Handle("/api/interview/create", s.authenticated(s.handleInterviewCreate))
	s.mux.Handle("/api/interview/get", s.authenticated(s.handleInterviewGet))
	s.mux.Handle("/api/interview/generate-questions", s.authenticated(s.handleGenerateQuestions))
	s.mux.HandleFunc("/api/interview/shared", s.handleInterviewShared)
	s.mux.HandleFunc("/api/interview/append-message", s.handleAppendMessage)

	// profile + feedback
	s.mux.Handle("/api/user/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/api/user/update-profile", s.authenticated(s.handleUpdateProfile))
	s.mux.Handle("/api/feedback/create", s.authenticated(s.handleFeedbackCreate))

	// public media
	s.mux.HandleFunc("/api/media/articles", s.handleMediaArticles)
	s.mux.HandleFunc("/api/media/articles/", s.handleMediaArticleByID)

	// internal
	s.mux.HandleFunc("/internal/knowledge-base/process", s.handleProcess)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, string)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.resolver.Resolve(r)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				s.audit(r, "api.authorize", "fail", "reason", "unauthenticated")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			slog.Error("identity resolution failed", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		next(w, r, userID)
	})
}

// allowPublic applies the shared limiter to unauthenticated surfaces.
func (s *Server) allowPublic(w http.ResponseWriter, r *http.Request, scope string) bool {
	if s.publicLimiter == nil {
		return true
	}
	if s.publicLimiter.Allow(scope + ":" + util.ClientIP(r)) {
		return true
	}
	s.audit(r, "api."+scope, "rate_limited")
	writeError(w, http.StatusTooManyRequests, "too many requests")
	return false
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps the app sentinel errors onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrGenerationFailed):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
