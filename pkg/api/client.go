// Package api is the REST client for the planner backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tableflip.dev/planner/pkg/session"
)

// ErrUnauthorized is returned for any 401 response. The session has already
// been cleared when it is returned.
var ErrUnauthorized = errors.New("api: session expired")

// ErrNoResource is returned when an approval succeeds without naming the
// resource it created.
var ErrNoResource = errors.New("api: approval returned no resource id")

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Code != "":
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the planner REST API on behalf of a session.
type Client struct {
	base    string
	http    *http.Client
	session *session.Session
	log     *slog.Logger

	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport. The bearer token is still
// attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// OnUnauthorized registers fn to run after a 401 cleared the session.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New returns a client for baseURL (for example http://localhost:8080/api/v1).
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = &oauth2.Transport{
		Source: sess,
		Base:   requestIDTransport{base: base},
	}
	c.http = &hc
	return c
}

type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-ID") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(req)
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return session.ErrNoSession
		}
		c.log.Error("api: request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn("api: unauthorized, clearing session", "method", method, "path", path)
		if c.session != nil {
			if err := c.session.Clear(); err != nil {
				c.log.Error("api: clear session", "err", err)
			}
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Code = eb.Code
			if apiErr.Code == "" {
				apiErr.Code = eb.Error
			}
			apiErr.Message = eb.Message
		}
		c.log.Error("api: request rejected", "method", method, "path", path, "status", resp.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}
