package server

import (
	"net/http"

	"bankisha/internal/app"
)

func (s *Server) handleFeedbackCreate(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req feedbackCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := s.app.CreateFeedback(r.Context(), userID, app.FeedbackInput{
		CompanyID:   req.CompanyID,
		InterviewID: req.InterviewID,
		ArticleID:   req.ArticleID,
		Source:      req.Source,
		Type:        req.Type,
		Message:     req.Message,
		Context:     req.Context,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "feedbackId": id})
}

type feedbackCreateRequest struct {
	CompanyID   string `json:"companyId"`
	InterviewID string `json:"interviewId"`
	ArticleID   string `json:"articleId"`
	Source      string `json:"source"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	Context     string `json:"context"`
}
