package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AlgHS256 is the only algorithm a magic-link token may declare.
const AlgHS256 = "HS256"

// Reason explains why a token failed verification. Reasons are meant for
// debugging and are never shown verbatim to end users.
type Reason string

const (
	ReasonMalformed            Reason = "malformed"
	ReasonBadSignature         Reason = "bad signature"
	ReasonUnsupportedAlgorithm Reason = "unsupported algorithm"
	ReasonParseError           Reason = "parse error"
	ReasonExpired              Reason = "expired"
)

// Header is the decoded JOSE header of a magic-link token.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Claims is the decoded payload of a magic-link token. Exp is nil when the
// token carries no numeric expiry.
type Claims struct {
	Sub string
	Exp *int64
}

// ExpiresAt returns the expiry as a time and whether one is set.
func (c *Claims) ExpiresAt() (time.Time, bool) {
	if c == nil || c.Exp == nil {
		return time.Time{}, false
	}
	return time.Unix(*c.Exp, 0), true
}

// Result is the outcome of verifying one token.
type Result struct {
	Valid  bool
	Claims *Claims
	Reason Reason
}

func failure(reason Reason) Result {
	return Result{Reason: reason}
}

// signatureEncoding rejects padding and non-zero trailing bits so that every
// distinct signature string maps to a distinct MAC.
var signatureEncoding = base64.RawURLEncoding.Strict()

// TokenVerifier checks HS256 magic-link tokens against a shared secret.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// TokenVerifierOption configures a TokenVerifier.
type TokenVerifierOption func(*TokenVerifier)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) TokenVerifierOption {
	return func(v *TokenVerifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewTokenVerifier creates a verifier for tokens signed with secret.
func NewTokenVerifier(secret string, opts ...TokenVerifierOption) *TokenVerifier {
	v := &TokenVerifier{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates token. The MAC is checked before the header or payload is
// decoded, so unauthenticated claims are never parsed.
func (v *TokenVerifier) Verify(token string) Result {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return failure(ReasonMalformed)
	}

	sig, err := signatureEncoding.DecodeString(parts[2])
	if err != nil {
		return failure(ReasonBadSignature)
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, v.secret); err != nil {
		return failure(ReasonBadSignature)
	}

	header, err := decodeHeader(parts[0])
	if err != nil {
		return failure(ReasonParseError)
	}
	if header.Alg != AlgHS256 {
		return failure(ReasonUnsupportedAlgorithm)
	}

	claims, err := decodeClaims(parts[1])
	if err != nil {
		return failure(ReasonParseError)
	}
	if claims.Exp != nil && v.now().Unix() > *claims.Exp {
		return failure(ReasonExpired)
	}

	return Result{Valid: true, Claims: claims}
}

func decodeSegment(seg string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, errNotObject
	}
	return raw, nil
}

type headerWire struct {
	Alg json.RawMessage `json:"alg"`
	Typ json.RawMessage `json:"typ"`
}

// decodeHeader fails only when the segment is not a JSON object. Fields of
// the wrong type decode as empty, so a non-string alg is reported as an
// unsupported algorithm rather than a parse error.
func decodeHeader(seg string) (Header, error) {
	raw, err := decodeSegment(seg)
	if err != nil {
		return Header{}, err
	}
	var w headerWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Header{}, err
	}
	return Header{Alg: jsonString(w.Alg), Typ: jsonString(w.Typ)}, nil
}

func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

type claimsWire struct {
	Sub string          `json:"sub"`
	Exp json.RawMessage `json:"exp"`
}

func decodeClaims(seg string) (*Claims, error) {
	raw, err := decodeSegment(seg)
	if err != nil {
		return nil, err
	}
	var w claimsWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return &Claims{Sub: w.Sub, Exp: numericExp(w.Exp)}, nil
}

// numericExp returns the expiry when raw is a JSON number. Strings, booleans,
// null and objects count as no expiry.
func numericExp(raw json.RawMessage) *int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	var exp int64
	switch {
	case f >= math.MaxInt64:
		exp = math.MaxInt64
	case f <= math.MinInt64:
		exp = math.MinInt64
	default:
		exp = int64(math.Floor(f))
	}
	return &exp
}
