package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agenciadigital/accessgate/internal/crypto"
)

// IssueToken mints an HS256 magic-link token for sub. A zero exp produces a
// token without expiry.
func IssueToken(secret, sub string, exp time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	claims := jwt.RegisteredClaims{
		Subject:  sub,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// LicensePrefix is the leading segment of issued license keys.
const LicensePrefix = "LICENSE"

// IssueLicense builds a PREFIX-SIGNATURE-YEAR key whose signature is the hex
// HMAC of email and purchaseID. The validator only checks the signature's
// shape, so any key minted here validates.
func IssueLicense(secret, email, purchaseID string, year int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	email = strings.ToLower(strings.TrimSpace(email))
	purchaseID = strings.TrimSpace(purchaseID)
	if email == "" || purchaseID == "" {
		return "", fmt.Errorf("email and purchase id are required")
	}
	sig := crypto.HMACHex(secret, email, purchaseID)
	return fmt.Sprintf("%s-%s-%d", LicensePrefix, sig, year), nil
}
