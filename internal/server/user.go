package server

import (
	"net/http"

	"bankisha/internal/app"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	user, err := s.app.Profile(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	companyID, err := s.app.UpdateProfile(r.Context(), userID, app.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		PhotoURL:    req.PhotoURL,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := map[string]any{"success": true}
	if companyID != "" {
		resp["companyId"] = companyID
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	PhotoURL    *string `json:"photoURL"`
	CompanyName *string `json:"companyName"`
}
