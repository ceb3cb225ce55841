// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "github.com/FuriousFire05/secure-ai-chat/internal/model"

// =============================================================================
// FORM FIELDS
// =============================================================================

// Multipart field names shared by the client and the fake service.
const (
	FieldMessage     = "message"
	FieldFile        = "file"
	FieldSelectedIDs = "selected_ids"
)

// Endpoint paths relative to the base URL.
const (
	PathHealth        = "/health"
	PathChat          = "/chat"
	PathDetect        = "/pii/detect"
	PathRedactAndChat = "/pii/redact-and-chat"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the response from the chat endpoint.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// DetectResponse is the response from the detect endpoint.
type DetectResponse struct {
	Items []model.PiiItem `json:"items"`

	// Text is the full recognized text, when the detector reports it.
	Text string `json:"text,omitempty"`
	// Count mirrors len(Items) on detectors that send it.
	Count int `json:"count,omitempty"`
}

// RedactResponse is the response from the redact-and-chat endpoint.
// Both fields are optional and independent.
type RedactResponse struct {
	RedactedImageBase64 string `json:"redacted_image_base64,omitempty"`
	Reply               string `json:"reply,omitempty"`
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body the service sends with a non-success status.
type ErrorResponse struct {
	Error string `json:"error"`
}
