package auth

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestUnlockCookieDefaults(t *testing.T) {
	c := UnlockCookie(CookiePolicy{}, &Claims{Sub: "s"}, fixedNow)

	if c.Name != "purchaseUnlocked" || c.Value != "true" {
		t.Fatalf("cookie = %s=%s", c.Name, c.Value)
	}
	if c.MaxAge != 604800 {
		t.Fatalf("max age = %d, want 604800", c.MaxAge)
	}
	if c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected path or samesite: %+v", c)
	}
	if c.HttpOnly || c.Secure || c.Domain != "" {
		t.Fatalf("unexpected flags: %+v", c)
	}

	header := c.String()
	for _, part := range []string{"purchaseUnlocked=true", "Max-Age=604800", "Path=/", "SameSite=Lax"} {
		if !strings.Contains(header, part) {
			t.Fatalf("header %q missing %q", header, part)
		}
	}
	if strings.Contains(header, "HttpOnly") || strings.Contains(header, "Secure") {
		t.Fatalf("header %q must not be HttpOnly or Secure", header)
	}
}

func TestUnlockCookieProduction(t *testing.T) {
	c := UnlockCookie(CookiePolicy{Domain: "agencia.example", Secure: true}, nil, fixedNow)
	header := c.String()
	if !strings.Contains(header, "Domain=agencia.example") {
		t.Fatalf("header %q missing domain", header)
	}
	if !strings.Contains(header, "Secure") {
		t.Fatalf("header %q missing Secure", header)
	}
}

func TestUnlockCookieCappedByExpiry(t *testing.T) {
	exp := fixedNow.Add(90 * time.Minute).Unix()
	c := UnlockCookie(CookiePolicy{}, &Claims{Exp: &exp}, fixedNow)
	if c.MaxAge != 90*60 {
		t.Fatalf("max age = %d, want %d", c.MaxAge, 90*60)
	}

	far := fixedNow.Add(30 * 24 * time.Hour).Unix()
	c = UnlockCookie(CookiePolicy{}, &Claims{Exp: &far}, fixedNow)
	if c.MaxAge != 604800 {
		t.Fatalf("max age = %d, want 604800", c.MaxAge)
	}

	now := fixedNow.Unix()
	c = UnlockCookie(CookiePolicy{}, &Claims{Exp: &now}, fixedNow)
	if c.MaxAge != 1 {
		t.Fatalf("max age = %d, want 1", c.MaxAge)
	}
}
