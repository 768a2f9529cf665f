// Package backend wraps the retrivis REST API.
//
// The client is a thin, uniform HTTP/JSON adapter: it attaches the bearer
// token, distinguishes success from failure by status code alone, and
// unwraps the backend's {"data": ...} response envelope. It carries no
// retry or timeout policy beyond the transport default; callers decide.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/requestid"
	"github.com/jawahar-singamsetty/retrivis.ai-client/pkg/tokensource"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the retrivis backend API client.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	tokens     tokensource.Source
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient creates a backend API client. tokens may not be nil; metrics
// may be nil when no registry is wired.
func NewClient(baseURL string, tokens tokensource.Source, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger.With().Str("component", "backend").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.httpClient = hc
}

// SetMetrics attaches a metrics recorder.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the backend's uniform success wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Get performs an authenticated GET and decodes the enveloped result into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs an authenticated DELETE. The backend's "ok" body is
// treated as opaque.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do executes one authenticated API request. Any non-2xx status yields a
// *apperrors.RequestError; the error body is never interpreted.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestid.FromContext(ctx))

	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("fetching auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(operation(method, path), "transport_error", time.Since(start))
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.metrics.RecordRequest(operation(method, path), fmt.Sprintf("%d", resp.StatusCode), elapsed)
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &apperrors.RequestError{Method: method, Path: path, Status: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// UploadBytes transfers raw bytes to a pre-authorized storage location via
// a direct PUT. No auth header is attached (the URL itself is the grant)
// and no JSON body is parsed; object storage returns none. Non-2xx yields
// a *apperrors.UploadError.
func (c *Client) UploadBytes(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing upload: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperrors.UploadError{Status: resp.StatusCode}
	}
	return nil
}

// operation reduces a concrete path to a metrics label, stripping ids.
func operation(method, path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, p := range parts {
		// ids follow a known collection segment
		if i > 0 && isCollection(parts[i-1]) && !isKnownSegment(p) {
			parts[i] = ":id"
		}
	}
	return method + " /" + strings.Join(parts, "/")
}

func isCollection(segment string) bool {
	switch segment {
	case "projects", "chats", "files", "messages", "urls":
		return true
	}
	return false
}

func isKnownSegment(segment string) bool {
	switch segment {
	case "upload-url", "confirm", "settings", "chunks":
		return true
	}
	return isCollection(segment)
}
