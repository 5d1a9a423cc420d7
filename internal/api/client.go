package api

//go:generate mockgen -destination=../mocks/mock_transport.go -package=mocks github.com/mkasonde/pvc-portal/internal/api Transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/mkasonde/pvc-portal/internal/token"
)

// maxErrorBody bounds how much of an error response is read when looking
// for a server-provided message.
const maxErrorBody = 1 << 20

// Transport is the narrow surface domain services depend on. Client is the
// live implementation; tests substitute a generated mock.
type Transport interface {
	Get(ctx context.Context, path string, out any, opts ...CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...CallOption) error
	Put(ctx context.Context, path string, body, out any, opts ...CallOption) error
	Delete(ctx context.Context, path string, opts ...CallOption) error
	Upload(ctx context.Context, path, filename string, r io.Reader, out any) error
}

type callConfig struct {
	auth bool
}

// CallOption adjusts a single request.
type CallOption func(*callConfig)

// WithoutAuth suppresses the Authorization header; guest-facing endpoints
// opt out of auth.
func WithoutAuth() CallOption {
	return func(c *callConfig) { c.auth = false }
}

// Client performs one HTTP exchange per call with consistent headers,
// credential policy and error normalisation. Its only side effect outside
// the request itself is clearing the token store on a 401.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  token.Store
}

// New creates a Client. The timeout is the hard deadline for each exchange;
// callers can shorten it further per call via context.
func New(baseURL string, tokens token.Store, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts []CallOption) error {
	cfg := callConfig{auth: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, cfg.auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, out)
}

// Upload posts a multipart form with a single file field. Used for the
// product bulk upload endpoint.
func (c *Client) Upload(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read upload file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	c.setAuthorization(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, out)
}

func (c *Client) setHeaders(req *http.Request, auth bool) {
	req.Header.Set("Content-Type", "application/json")
	// Same-origin intent marker; basic CSRF mitigation.
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if auth {
		c.setAuthorization(req)
	}
}

func (c *Client) setAuthorization(req *http.Request) {
	tok := c.tokens.AccessToken()
	if tok == "" || token.IsGuest(tok) {
		return
	}
	if !strings.HasPrefix(tok, "Bearer ") {
		tok = "Bearer " + tok
	}
	req.Header.Set("Authorization", tok)
}

func (c *Client) handleResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = ErrAuthentication
		c.tokens.Clear()
	case resp.StatusCode == http.StatusForbidden:
		kind = ErrAuthorization
	case resp.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case resp.StatusCode >= 500:
		kind = ErrServer
	default:
		kind = ErrRequestFailed
	}

	// Prefer a server-provided message; keep the generic one when the body
	// does not parse.
	message := ""
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			message = body.Message
		}
	}
	return statusError(resp.StatusCode, message, kind)
}
