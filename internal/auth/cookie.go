package auth

import (
	"net/http"
	"time"
)

const (
	// UnlockCookieName is shared with the client-side unlock flag.
	UnlockCookieName = "purchaseUnlocked"

	// UnlockCookieMaxAge is the longest an unlock cookie lives.
	UnlockCookieMaxAge = 7 * 24 * time.Hour
)

// CookiePolicy carries the site-dependent cookie attributes.
type CookiePolicy struct {
	Domain string
	Secure bool
}

// UnlockCookie builds the cookie set after a successful token verification.
// The cookie stays readable from script because the client mirrors it into
// its own storage. When claims carry an expiry, Max-Age never outlives the
// token.
func UnlockCookie(policy CookiePolicy, claims *Claims, now time.Time) *http.Cookie {
	maxAge := UnlockCookieMaxAge
	if exp, ok := claims.ExpiresAt(); ok {
		if remaining := exp.Sub(now); remaining < maxAge {
			maxAge = remaining
		}
	}
	seconds := int(maxAge / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	return &http.Cookie{
		Name:     UnlockCookieName,
		Value:    "true",
		Path:     "/",
		Domain:   policy.Domain,
		MaxAge:   seconds,
		Secure:   policy.Secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}
