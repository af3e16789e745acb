package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGenerateMetadata(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req articleIDRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	metadata, err := s.app.GenerateArticleMetadata(r.Context(), userID, req.ArticleID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "metadata": json.RawMessage(metadata)})
}

func (s *Server) handleGenerateFromInterview(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req generateFromInterviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	article, err := s.app.GenerateArticleFromInterview(r.Context(), userID, req.InterviewID, req.ArticleID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "article": article})
}

func (s *Server) handleArticlePublish(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req articleIDRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.PublishArticle(r.Context(), userID, req.ArticleID); err != nil {
		s.audit(r, "article.publish", "fail", "user_id", userID, "article_id", req.ArticleID)
		writeAppError(w, err)
		return
	}
	s.audit(r, "article.publish", "success", "user_id", userID, "article_id", req.ArticleID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type articleIDRequest struct {
	ArticleID string `json:"articleId"`
}

type generateFromInterviewRequest struct {
	InterviewID string `json:"interviewId"`
	ArticleID   string `json:"articleId"`
}
