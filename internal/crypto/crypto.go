// Package crypto holds the primitive comparisons and MACs shared by the
// token and license paths.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// ConstantTimeEqual reports whether a and b are equal. Inputs of different
// length return false immediately; equal-length inputs are compared in time
// independent of where they first differ.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// HMACHex returns the lowercase hex HMAC-SHA256 of the parts joined by "|".
func HMACHex(secret string, parts ...string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
