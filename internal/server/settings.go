package server

import "net/http"

func (s *Server) handleSystemSettings(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.app.GetSystemSetting(r.Context(), userID, r.URL.Query().Get("key"))
		if err != nil {
			s.audit(r, "admin.settings.read", "fail", "user_id", userID)
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	case http.MethodPost:
		var req systemSettingRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.UpdateSystemSetting(r.Context(), userID, req.Key, req.Data); err != nil {
			s.audit(r, "admin.settings.write", "fail", "user_id", userID, "key", req.Key)
			writeAppError(w, err)
			return
		}
		s.audit(r, "admin.settings.write", "success", "user_id", userID, "key", req.Key)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		methodNotAllowed(w)
	}
}

type systemSettingRequest struct {
	Key  string         `json:"key"`
	Data map[string]any `json:"data"`
}
