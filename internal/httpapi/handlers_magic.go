package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agenciadigital/accessgate/internal/auth"
	"github.com/agenciadigital/accessgate/pkg/models"
)

const maxBodyBytes = 8 << 10

// handleMagic verifies a magic-link token and sets the unlock cookie.
func (s *Server) handleMagic(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = tokenFromBody(r)
	}
	if token == "" {
		s.stats.magicFailure.Add(1)
		s.logOperation(r.Context(), "magic_link", http.StatusBadRequest, "reason", "missing token")
		writeError(w, http.StatusBadRequest, models.MsgMissingToken)
		return
	}

	res := s.tokens.Verify(token)
	if !res.Valid {
		s.stats.magicFailure.Add(1)
		s.logOperation(r.Context(), "magic_link", http.StatusUnauthorized, "reason", string(res.Reason))
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Error:  models.MsgInvalidToken,
			Reason: string(res.Reason),
		})
		return
	}

	http.SetCookie(w, auth.UnlockCookie(s.cookie, res.Claims, s.now()))
	s.stats.magicSuccess.Add(1)
	s.logOperation(r.Context(), "magic_link", http.StatusOK)
	writeUnlocked(w)
}

// tokenFromBody reads the token from an optional JSON body. Any read or
// decode problem counts as no token.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	var req models.TokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return ""
	}
	return req.Token
}
