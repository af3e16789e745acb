package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bankisha/internal/identity"
)

func (s *Server) handleMediaArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	articles, err := s.app.ListPublicArticles(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// handleMediaArticleByID serves /api/media/articles/{id},
// /api/media/articles/{id}/view and /api/media/articles/{id}/comments.
func (s *Server) handleMediaArticleByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/media/articles/")
	if rest == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id, action, _ := strings.Cut(rest, "/")

	switch {
	case action == "" && r.Method == http.MethodGet:
		article, err := s.app.PublicArticle(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, article)
	case action == "view" && r.Method == http.MethodPost:
		if !s.allowPublic(w, r, "media.view") {
			return
		}
		views, err := s.app.AddArticleView(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"views": views})
	case action == "comments" && r.Method == http.MethodGet:
		if !s.allowPublic(w, r, "media.comments") {
			return
		}
		comments, err := s.app.ListArticleComments(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
	case action == "comments" && r.Method == http.MethodPost:
		s.handleCommentCreate(w, r, id)
	case action == "" || action == "view" || action == "comments":
		methodNotAllowed(w)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleCommentCreate posts a comment. Reading is public, writing needs a
// signed-in caller.
func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request, articleID string) {
	userID, err := s.resolver.Resolve(r)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			s.audit(r, "media.comment", "fail", "reason", "unauthenticated")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		slog.Error("identity resolution failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	var req commentCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	comment, err := s.app.AddArticleComment(r.Context(), userID, articleID, req.Content)
	if err != nil {
		s.audit(r, "media.comment", "fail", "user_id", userID, "article_id", articleID)
		writeAppError(w, err)
		return
	}
	s.audit(r, "media.comment", "success", "user_id", userID, "article_id", articleID, "comment_id", comment.ID)
	writeJSON(w, http.StatusCreated, comment)
}

type commentCreateRequest struct {
	Content string `json:"content"`
}
