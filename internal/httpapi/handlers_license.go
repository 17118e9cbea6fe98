package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agenciadigital/accessgate/pkg/models"
)

// handleLicense validates a typed license key. No cookie is set; the client
// persists the unlock flag itself.
func (s *Server) handleLicense(w http.ResponseWriter, r *http.Request) {
	var req models.LicenseRequest
	if r.Body != nil {
		// A body that is not a JSON object with a string license is treated
		// the same as a missing license.
		_ = json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	}
	if req.License == "" {
		s.stats.licenseFailure.Add(1)
		s.logOperation(r.Context(), "license", http.StatusBadRequest, "reason", "missing license")
		writeError(w, http.StatusBadRequest, models.MsgMissingLicense)
		return
	}

	if !s.licenses.Verify(req.License) {
		s.stats.licenseFailure.Add(1)
		s.logOperation(r.Context(), "license", http.StatusUnauthorized, "reason", "invalid license")
		writeError(w, http.StatusUnauthorized, models.MsgInvalidLicense)
		return
	}

	kind := "signed"
	if s.licenses.IsDemo(req.License) {
		kind = "demo"
		s.stats.licenseDemo.Add(1)
	}
	s.stats.licenseSuccess.Add(1)
	s.logOperation(r.Context(), "license", http.StatusOK, "license_kind", kind)
	writeUnlocked(w)
}
