// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the external PII service.
//
// The service exposes three contracts under a common base URL:
//
//   - POST /chat                 text-only chat, form field "message"
//   - POST /pii/detect           PII detection, form field "file"
//   - POST /pii/redact-and-chat  redaction plus chat, fields "file", "message", "selected_ids"
//
// All requests are multipart/form-data and all responses are JSON. The client
// does not retry.
package backend
