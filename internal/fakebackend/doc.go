// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fakebackend implements an in-process stand-in for the PII service.
//
// It speaks the same wire contracts as the real service, answers with canned
// detection results, and records every request so tests can assert on what the
// client sent. It performs no OCR and no real redaction: the "redacted" image is
// the uploaded bytes echoed back unless Options.RedactedImage is set.
//
// Endpoints (under /api):
//   - GET  /health
//   - POST /chat
//   - POST /pii/detect
//   - POST /pii/redact-and-chat
//
// Usage:
//
//	fake := fakebackend.New(fakebackend.Options{ChatReply: "hi"})
//	srv := httptest.NewServer(fake.Handler())
//	client := backend.NewClient(&backend.ClientConfig{BaseURL: srv.URL + fakebackend.APIPrefix})
package fakebackend
