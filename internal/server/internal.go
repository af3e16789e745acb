package server

import (
	"net/http"

	"bankisha/internal/servicetoken"
)

// handleProcess runs the knowledge processing pipeline. Only callers
// presenting a valid internal service token are accepted; the endpoint is
// never reachable with user credentials.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := servicetoken.BearerToken(r)
	if !ok {
		s.audit(r, "internal.process", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claims, err := s.serviceVerifier.Verify(token)
	if err != nil {
		s.audit(r, "internal.process", "fail", "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req processRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.KnowledgeBaseID == "" {
		writeError(w, http.StatusBadRequest, "knowledgeBaseId is required")
		return
	}
	if err := s.processor.Process(r.Context(), req.KnowledgeBaseID); err != nil {
		s.audit(r, "internal.process", "fail", "issuer", claims.Issuer, "knowledge_base_id", req.KnowledgeBaseID)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.audit(r, "internal.process", "success", "issuer", claims.Issuer, "knowledge_base_id", req.KnowledgeBaseID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type processRequest struct {
	KnowledgeBaseID string `json:"knowledgeBaseId"`
}
