package models

// UnlockResponse is the decision returned by both unlock endpoints on success
type UnlockResponse struct {
	Unlocked bool `json:"unlocked"`
}

// ErrorResponse is returned on every failure. Reason is only filled on the
// token path and carries the internal verification reason code.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// TokenRequest is the optional JSON body of the magic-link endpoint
type TokenRequest struct {
	Token string `json:"token"`
}

// LicenseRequest is the JSON body of the license endpoint
type LicenseRequest struct {
	License string `json:"license"`
}

// HealthResponse reports liveness and build version
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// MetricsResponse reports unlock counters since process start
type MetricsResponse struct {
	MagicSuccess   int64 `json:"magic_success"`
	MagicFailure   int64 `json:"magic_failure"`
	LicenseSuccess int64 `json:"license_success"`
	LicenseDemo    int64 `json:"license_demo"`
	LicenseFailure int64 `json:"license_failure"`
	RateLimited    int64 `json:"rate_limited"`
	UptimeSeconds  int64 `json:"uptime_seconds"`
}

// User-facing error messages. They match what the site's front-end expects.
const (
	MsgMissingToken     = "Falta token"
	MsgInvalidToken     = "Token inválido"
	MsgMissingLicense   = "Falta clave de licencia"
	MsgInvalidLicense   = "Licencia inválida"
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgTooManyRequests  = "Demasiados intentos"
	MsgInternal         = "Error interno"
)
