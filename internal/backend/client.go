// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api
	BaseURL string

	// Timeout bounds each request, including upload and model latency (default: 60s)
	Timeout time.Duration

	// RequestsPerSecond spaces requests on the client side. Zero disables pacing.
	RequestsPerSecond float64

	// UserAgent sent with every request.
	UserAgent string

	// Logger receives one entry per request. Nil discards.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://localhost:8000/api",
		Timeout:   60 * time.Second,
		UserAgent: "secure-ai-chat",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the external service. Safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient(nil)
//	resp, err := client.Chat(ctx, "Hello")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a client, filling zero fields of config with defaults.
func NewClient(config *ClientConfig) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	log := cfg.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	c := &Client{
		config:     &cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Health verifies that the service is reachable and reports status "ok".
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, PathHealth, nil, "", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: ErrUnhealthy.Message + ": " + resp.Status}
	}
	return nil
}

// Chat sends a text-only message.
func (c *Client) Chat(ctx context.Context, message string) (*ChatResponse, error) {
	body, contentType, err := buildForm(func(w *multipart.Writer) error {
		return w.WriteField(FieldMessage, message)
	})
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, PathChat, body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Detect uploads the image and returns the detected PII candidates.
func (c *Client) Detect(ctx context.Context, file upload.File) (*DetectResponse, error) {
	body, contentType, err := buildForm(func(w *multipart.Writer) error {
		return writeFile(w, file)
	})
	if err != nil {
		return nil, err
	}

	var resp DetectResponse
	if err := c.do(ctx, http.MethodPost, PathDetect, body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RedactAndChat uploads the image with the ids to redact and a message.
func (c *Client) RedactAndChat(ctx context.Context, file upload.File, message string, selected []model.ItemID) (*RedactResponse, error) {
	if selected == nil {
		selected = []model.ItemID{}
	}
	ids, err := json.Marshal(selected)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to encode selected ids", Cause: err}
	}

	body, contentType, err := buildForm(func(w *multipart.Writer) error {
		if err := writeFile(w, file); err != nil {
			return err
		}
		if err := w.WriteField(FieldMessage, message); err != nil {
			return err
		}
		return w.WriteField(FieldSelectedIDs, string(ids))
	})
	if err != nil {
		return nil, err
	}

	var resp RedactResponse
	if err := c.do(ctx, http.MethodPost, PathRedactAndChat, body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &ClientError{Type: ErrTypeTimeout, Message: "rate limiter wait aborted", Cause: err}
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
		"bytes":      len(body),
	})
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		entry.WithError(err).WithField("duration", time.Since(start)).Warn("backend request failed")
		if isTimeout(err) {
			return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return &ClientError{Type: ErrTypeConnection, Message: ErrUnreachable.Message, Cause: err}
	}
	defer drainAndClose(resp.Body)

	entry = entry.WithFields(logrus.Fields{"status": resp.StatusCode, "duration": time.Since(start)})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		entry.Warn("backend returned error status")
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		entry.WithError(err).Warn("backend response could not be decoded")
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	entry.Debug("backend request completed")
	return nil
}

// statusError builds a server error, preferring the service's {"error": ...} text.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var svcErr ErrorResponse
	if err := json.Unmarshal(data, &svcErr); err == nil && svcErr.Error != "" {
		return &ClientError{Type: ErrTypeServer, Status: resp.StatusCode, Message: svcErr.Error}
	}
	return &ClientError{Type: ErrTypeServer, Status: resp.StatusCode, Message: "request failed: " + resp.Status}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// =============================================================================
// MULTIPART HELPERS
// =============================================================================

func buildForm(fill func(w *multipart.Writer) error) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return nil, "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build form", Cause: err}
	}
	if err := w.Close(); err != nil {
		return nil, "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build form", Cause: err}
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, file upload.File) error {
	name := file.Name
	if name == "" {
		name = "upload"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldFile, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file.Reader())
	return err
}

// drainAndClose lets the connection be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
