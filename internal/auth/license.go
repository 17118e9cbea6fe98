package auth

import (
	"regexp"
	"strings"

	"github.com/agenciadigital/accessgate/internal/crypto"
)

var signatureShape = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

// LicenseValidator decides whether a typed license key unlocks content.
//
// Keys are accepted when they equal the demo key or when their second
// dash-separated segment looks like a SHA-256 hex digest. The signature is
// not recomputed against a purchase record, so the secret is held for the
// day that check exists but does not take part in validation.
type LicenseValidator struct {
	secret string
	demo   string
}

// NewLicenseValidator creates a validator for the given secret and demo key.
func NewLicenseValidator(secret, demo string) *LicenseValidator {
	return &LicenseValidator{secret: secret, demo: demo}
}

// IsDemo reports whether license is the configured demo key.
func (v *LicenseValidator) IsDemo(license string) bool {
	return v.demo != "" && crypto.ConstantTimeEqual(license, v.demo)
}

// Verify reports whether license unlocks content. An empty license is never
// valid; callers report it as missing before calling Verify.
func (v *LicenseValidator) Verify(license string) bool {
	if license == "" {
		return false
	}
	if v.IsDemo(license) {
		return true
	}
	return HasSignatureShape(license)
}

// HasSignatureShape reports whether license has at least three dash
// segments and a 64 character hex second segment.
func HasSignatureShape(license string) bool {
	parts := strings.Split(license, "-")
	if len(parts) < 3 {
		return false
	}
	return signatureShape.MatchString(parts[1])
}
