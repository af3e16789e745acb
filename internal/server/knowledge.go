package server

import (
	"net/http"

	"bankisha/internal/app"
	"bankisha/internal/domain"
)

func (s *Server) handleKnowledgeCreate(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req knowledgeCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := s.app.CreateKnowledgeBase(r.Context(), userID, app.CreateKnowledgeInput{
		Type:        domain.KnowledgeType(req.Type),
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		StorageURL:  req.StorageURL,
		StoragePath: req.StoragePath,
	})
	if err != nil {
		s.audit(r, "knowledge.create", "fail", "user_id", userID, "type", req.Type)
		writeAppError(w, err)
		return
	}
	s.audit(r, "knowledge.create", "success", "user_id", userID, "knowledge_base_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "knowledgeBaseId": id})
}

func (s *Server) handleKnowledgeList(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	list, err := s.app.ListKnowledgeBases(r.Context(), userID, domain.KnowledgeType(r.URL.Query().Get("type")))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"knowledgeBases": list})
}

func (s *Server) handleKnowledgeRestore(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req knowledgeRestoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	content, err := s.app.RestoreKnowledgeContent(r.Context(), userID, req.KnowledgeBaseID, domain.ContentKind(req.ContentType), req.Version)
	if err != nil {
		s.audit(r, "knowledge.restore", "fail", "user_id", userID, "knowledge_base_id", req.KnowledgeBaseID)
		writeAppError(w, err)
		return
	}
	s.audit(r, "knowledge.restore", "success", "user_id", userID, "knowledge_base_id", req.KnowledgeBaseID, "version", req.Version)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": content})
}

func (s *Server) handleKnowledgeRegenerate(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req knowledgeRegenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	newText, err := s.app.RegenerateKnowledgeContent(r.Context(), userID, req.KnowledgeBaseID, domain.ContentKind(req.ContentType), req.Feedback, req.FeedbackMode)
	if err != nil {
		s.audit(r, "knowledge.regenerate", "fail", "user_id", userID, "knowledge_base_id", req.KnowledgeBaseID)
		writeAppError(w, err)
		return
	}
	s.audit(r, "knowledge.regenerate", "success", "user_id", userID, "knowledge_base_id", req.KnowledgeBaseID, "content_type", req.ContentType)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "newText": newText})
}

func (s *Server) handleKnowledgeDelete(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req knowledgeDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.DeleteKnowledgeBase(r.Context(), userID, req.KnowledgeBaseID); err != nil {
		s.audit(r, "knowledge.delete", "fail", "user_id", userID, "knowledge_base_id", req.KnowledgeBaseID)
		writeAppError(w, err)
		return
	}
	s.audit(r, "knowledge.delete", "success", "user_id", userID, "knowledge_base_id", req.KnowledgeBaseID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type knowledgeCreateRequest struct {
	Type        string `json:"type"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	StorageURL  string `json:"storageUrl"`
	StoragePath string `json:"storagePath"`
}

type knowledgeRestoreRequest struct {
	KnowledgeBaseID string `json:"knowledgeBaseId"`
	ContentType     string `json:"contentType"`
	Version         int    `json:"version"`
}

type knowledgeRegenerateRequest struct {
	KnowledgeBaseID string `json:"knowledgeBaseId"`
	ContentType     string `json:"contentType"`
	Feedback        string `json:"feedback"`
	FeedbackMode    string `json:"feedbackMode"`
}

type knowledgeDeleteRequest struct {
	KnowledgeBaseID string `json:"knowledgeBaseId"`
}
