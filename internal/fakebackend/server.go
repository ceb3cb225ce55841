// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fakebackend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// APIPrefix is the path the endpoints are mounted under.
	APIPrefix = "/api"

	// DefaultAddr matches the client's default base URL.
	DefaultAddr = "localhost:8000"

	// MaxUploadMemory bounds the in-memory part of a parsed multipart form.
	MaxUploadMemory = 32 << 20
)

// ============================================================================
// OPTIONS
// ============================================================================

// Options controls the canned answers the fake service gives.
type Options struct {
	// ChatReply is returned by /chat. Empty echoes the message.
	ChatReply string

	// Items is the detection result. Nil uses DefaultItems.
	Items []model.PiiItem
	// Text is the reported OCR text.
	Text string

	// RedactedImage is returned as redacted_image_base64. Empty echoes the upload.
	RedactedImage string
	// RedactReply is returned by /pii/redact-and-chat. Empty builds a summary.
	RedactReply string
	// OmitImage and OmitReply drop the respective field from redact responses.
	OmitImage bool
	OmitReply bool

	// Fail* make the endpoint answer 500.
	FailChat   bool
	FailDetect bool
	FailRedact bool

	// Delay is applied before every response.
	Delay time.Duration

	Logger logrus.FieldLogger
}

// DefaultItems mirrors what the OCR detector reports for a typical screenshot.
func DefaultItems() []model.PiiItem {
	return []model.PiiItem{
		{ID: model.NumberID(3), Type: "email", Text: "jane.doe@example.com",
			BBox: &model.BoundingBox{Left: 40, Top: 12, Width: 180, Height: 18}},
		{ID: model.NumberID(7), Type: "phone", Text: "+1-555-0100",
			BBox: &model.BoundingBox{Left: 40, Top: 36, Width: 96, Height: 18}},
		{ID: model.NumberID(12), Type: "name", Text: "Jane Doe",
			BBox: &model.BoundingBox{Left: 40, Top: 60, Width: 72, Height: 18}},
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Request is what the fake service recorded about one call.
type Request struct {
	Path        string
	RequestID   string
	Message     string
	FileName    string
	FileSize    int
	SelectedIDs string
}

// Server is an in-process stand-in for the PII service.
type Server struct {
	mu       sync.Mutex
	opts     Options
	requests []Request

	log     logrus.FieldLogger
	handler http.Handler
}

// New creates a fake service with the given options.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	s := &Server{opts: opts, log: log}

	router := mux.NewRouter()
	api := router.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc(backend.PathHealth, s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc(backend.PathChat, s.handleChat).Methods(http.MethodPost)
	api.HandleFunc(backend.PathDetect, s.handleDetect).Methods(http.MethodPost)
	api.HandleFunc(backend.PathRedactAndChat, s.handleRedactAndChat).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	s.handler = chain(recovery(log), requestLogging(log))(c.Handler(router))
	return s
}

// Handler returns the root handler, suitable for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetOptions replaces the canned answers. The logger is kept.
func (s *Server) SetOptions(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// Options returns the current canned answers.
func (s *Server) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Requests returns a copy of every recorded request in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("mock backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) record(req Request) Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.opts
}
