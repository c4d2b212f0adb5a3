package kb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultDocsURL  = "https://api.voiceflow.com"
	defaultQueryURL = "https://general-runtime.voiceflow.com"
	defaultTimeout  = 30 * time.Second

	contentTypeJSON = "application/json; charset=utf-8"
)

// Client talks to the Voiceflow Knowledge Base API. It holds immutable
// configuration only; operations are synchronous with one request in flight
// at a time and no state is shared across calls.
type Client struct {
	apiKey     string
	projectID  string
	docsURL    string
	queryURL   string
	httpClient *http.Client
}

// New creates a client for the production endpoints.
func New(apiKey, projectID string) *Client {
	return &Client{
		apiKey:     apiKey,
		projectID:  projectID,
		docsURL:    defaultDocsURL,
		queryURL:   defaultQueryURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithEndpoints creates a client pointing at custom hosts (for testing or
// regional deployments). Empty strings keep the defaults.
func NewWithEndpoints(apiKey, projectID, docsURL, queryURL string) *Client {
	c := New(apiKey, projectID)
	if docsURL != "" {
		c.docsURL = strings.TrimRight(docsURL, "/")
	}
	if queryURL != "" {
		c.queryURL = strings.TrimRight(queryURL, "/")
	}
	return c
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// do executes an assembled request and classifies the outcome. 2xx responses
// return the raw body for normalization; anything else maps onto the error
// taxonomy. No path retries.
func (c *Client) do(ctx context.Context, r *request) ([]byte, error) {
	base := c.docsURL
	if r.host == hostQuery {
		base = c.queryURL
	}
	endpoint := base + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		bodyReader = bytes.NewReader(r.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("X-Project-ID", c.projectID)
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classifyStatus(resp.StatusCode, body)
}

// classifyStatus maps a non-2xx response onto the error taxonomy. The body
// rides along in the message so server diagnostics are never swallowed;
// classification itself depends on the status alone.
func classifyStatus(status int, body []byte) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrAuthentication
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimit
	default:
		kind = ErrServer
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("%w (HTTP %d)", kind, status)
	}
	return fmt.Errorf("%w (HTTP %d): %s", kind, status, msg)
}
