package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/agenciadigital/accessgate/pkg/models"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeUnlocked(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, models.UnlockResponse{Unlocked: true})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, models.ErrorResponse{Error: message})
}
