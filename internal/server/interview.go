package server

import (
	"errors"
	"net/http"

	"bankisha/internal/app"
	"bankisha/internal/identity"
)

func (s *Server) handleInterviewCreate(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req interviewCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	interview, err := s.app.CreateInterview(r.Context(), userID, app.InterviewInput{
		IntervieweeName:    req.IntervieweeName,
		IntervieweeCompany: req.IntervieweeCompany,
		IntervieweeTitle:   req.IntervieweeTitle,
		InterviewerName:    req.InterviewerName,
		Objective:          req.Objective,
		Purpose:            req.Purpose,
		Category:           req.Category,
		TargetAudience:     req.TargetAudience,
		MediaType:          req.MediaType,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"interview":  interview,
		"shareToken": interview.ShareToken,
	})
}

func (s *Server) handleInterviewGet(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	interview, err := s.app.Interview(r.Context(), userID, r.URL.Query().Get("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"interview":  interview,
		"shareToken": interview.ShareToken,
	})
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req interviewIDRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	questions, err := s.app.GenerateInterviewQuestions(r.Context(), userID, req.InterviewID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "questions": questions})
}

// handleInterviewShared serves invitees holding a share link. No session
// or bearer token is involved, so the route is rate limited per IP.
func (s *Server) handleInterviewShared(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !s.allowPublic(w, r, "interview.shared") {
		return
	}
	interview, err := s.app.SharedInterview(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		s.audit(r, "interview.shared", "fail")
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}

// handleAppendMessage accepts either an authenticated owner (interviewId)
// or a share-token invitee (token).
func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req appendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID := ""
	if req.ShareToken == "" {
		id, err := s.resolver.Resolve(r)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		userID = id
	} else if !s.allowPublic(w, r, "interview.append") {
		return
	}

	err := s.app.AppendMessage(r.Context(), userID, app.AppendMessageInput{
		InterviewID: req.InterviewID,
		ShareToken:  req.ShareToken,
		Role:        req.Role,
		Content:     req.Content,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type interviewCreateRequest struct {
	IntervieweeName    string `json:"intervieweeName"`
	IntervieweeCompany string `json:"intervieweeCompany"`
	IntervieweeTitle   string `json:"intervieweeTitle"`
	InterviewerName    string `json:"interviewerName"`
	Objective          string `json:"objective"`
	Purpose            string `json:"interviewPurpose"`
	Category           string `json:"category"`
	TargetAudience     string `json:"targetAudience"`
	MediaType          string `json:"mediaType"`
}

type interviewIDRequest struct {
	InterviewID string `json:"interviewId"`
}

type appendMessageRequest struct {
	InterviewID string `json:"interviewId"`
	ShareToken  string `json:"token"`
	Role        string `json:"role"`
	Content     string `json:"content"`
}
