package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id generated for every backend request.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds the response excerpt kept in status errors.
const maxErrorBody = 512

// Client talks to the workflow backend. It implements ports.Backend and
// ports.TemplateSource.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var (
	_ ports.Backend        = (*Client)(nil)
	_ ports.TemplateSource = (*Client)(nil)
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithClientLogger configures a logger for the Client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Send posts payload as JSON to endpoint and decodes the transition response.
func (c *Client) Send(ctx context.Context, endpoint string, payload domain.ActionPayload) (*domain.TransitionResponse, error) {
	if payload.Data == nil {
		payload.Data = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend responded",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %d %s", domain.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	return decodeTransition(resp.Body)
}

// decodeTransition reads exactly one JSON object from r.
func decodeTransition(r io.Reader) (*domain.TransitionResponse, error) {
	dec := json.NewDecoder(r)
	var out *domain.TransitionResponse
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: empty transition body", domain.ErrMalformedResponse)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after transition body", domain.ErrMalformedResponse)
	}
	return out, nil
}

// Open fetches a static document from the backend with GET.
func (c *Client) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s returned %d", domain.ErrUnexpectedStatus, path, resp.StatusCode)
	}
	return resp.Body, nil
}
