package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agenciadigital/accessgate/internal/auth"
	"github.com/agenciadigital/accessgate/pkg/models"
)

// ErrUpstream marks transport failures and responses without a parseable
// body. The flow treats these as a degraded server, not as a rejection.
var ErrUpstream = errors.New("unlock service unavailable")

// Decision is the server's answer to one unlock attempt.
type Decision struct {
	Unlocked bool
	Status   int
	Error    string
	Reason   string
	Cookie   *http.Cookie
}

// Client calls the magic-link and license endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyToken asks the magic-link endpoint to verify token.
func (c *Client) VerifyToken(ctx context.Context, token string) (Decision, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/magic?token="+url.QueryEscape(token), nil)
	if err != nil {
		return Decision{}, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

// VerifyLicense asks the license endpoint to validate license.
func (c *Client) VerifyLicense(ctx context.Context, license string) (Decision, error) {
	body, err := json.Marshal(models.LicenseRequest{License: license})
	if err != nil {
		return Decision{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/license", bytes.NewReader(body))
	if err != nil {
		return Decision{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

type decisionBody struct {
	Unlocked bool   `json:"unlocked"`
	Error    string `json:"error"`
	Reason   string `json:"reason"`
}

func (c *Client) do(req *http.Request) (Decision, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	var body decisionBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return Decision{}, fmt.Errorf("%w: status %d with unreadable body: %v", ErrUpstream, resp.StatusCode, err)
	}

	decision := Decision{
		Unlocked: resp.StatusCode == http.StatusOK && body.Unlocked,
		Status:   resp.StatusCode,
		Error:    body.Error,
		Reason:   body.Reason,
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.UnlockCookieName {
			decision.Cookie = cookie
		}
	}
	return decision, nil
}
