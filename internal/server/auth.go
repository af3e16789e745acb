package server

import (
	"net/http"

	"bankisha/internal/identity"
)

// handleSessionExchange verifies an identity-provider bearer token and
// issues a platform session cookie. The cookie mechanism keeps the access
// token out of subsequent requests.
func (s *Server) handleSessionExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := identity.BearerToken(r)
	if !ok {
		s.audit(r, "auth.session", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := s.verifier.VerifySubject(token)
	if err != nil {
		s.audit(r, "auth.session", "fail", "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	session, err := s.sessions.NewSession(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.audit(r, "auth.session", "success", "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "userId": userID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	cookie, err := r.Cookie(s.sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := s.sessions.DeleteSession(cookie.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.audit(r, "auth.logout", "success")
	w.WriteHeader(http.StatusNoContent)
}
