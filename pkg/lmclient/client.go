// Package lmclient is the HTTP client for the LM music-metadata API
// (/health, /lm/inspire, /lm/format, /lm/understand).
package lmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	v1 "github.com/soundprobe/soundprobe/api/v1"
)

const (
	healthPath     = "/health"
	inspirePath    = "/lm/inspire"
	formatPath     = "/lm/format"
	understandPath = "/lm/understand"
)

// RequestEditorFn can mutate an outgoing request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Option configures a Client.
type Option func(*Client)

// WithBearerToken injects an Authorization header on every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.editors = append(c.editors, func(ctx context.Context, req *http.Request) error {
			if token == "" {
				return nil
			}
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
			return nil
		})
	}
}

// WithHTTPClient replaces the underlying http.Client. Deadlines are driven by
// the per-call context, so the default client carries no global timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to one LM API deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
	editors    []RequestEditorFn
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response couples the transport status with the decoded envelope. The
// envelope's Code field is what the checks assert on; StatusCode is kept for
// the cases where the two are expected to agree.
type Response struct {
	StatusCode int
	Envelope   v1.Envelope
}

// Metadata decodes the envelope's data payload as music metadata.
func (r *Response) Metadata() (*v1.Metadata, error) {
	var m v1.Metadata
	if err := r.Envelope.DecodeData(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Health performs GET /health.
func (c *Client) Health(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// Inspire performs POST /lm/inspire.
func (c *Client) Inspire(ctx context.Context, body v1.InspireRequest) (*Response, error) {
	return c.postJSON(ctx, inspirePath, body)
}

// Format performs POST /lm/format.
func (c *Client) Format(ctx context.Context, body v1.FormatRequest) (*Response, error) {
	return c.postJSON(ctx, formatPath, body)
}

// Understand performs POST /lm/understand with a JSON body referencing a
// server-side audio path or pre-extracted codes.
func (c *Client) Understand(ctx context.Context, body v1.UnderstandRequest) (*Response, error) {
	return c.postJSON(ctx, understandPath, body)
}

// UnderstandUpload performs POST /lm/understand as a multipart upload of the
// local audio file, with any extra form fields passed through verbatim.
func (c *Client) UnderstandUpload(ctx context.Context, audioFile string, form map[string]string) (*Response, error) {
	f, err := os.Open(audioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filepath.Base(audioFile))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	for k, v := range form {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+understandPath, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(ctx, req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	zap.S().Named("lmclient").Debugw("request", "path", path, "body", string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req *http.Request) (*Response, error) {
	for _, editor := range c.editors {
		if err := editor(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &out.Envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %s): %w", resp.Status, err)
	}

	zap.S().Named("lmclient").Debugw("response",
		"path", req.URL.Path, "status", resp.StatusCode, "code", out.Envelope.Code)
	return out, nil
}
