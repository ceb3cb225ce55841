// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// redactedPrefix is prepended to the base64 PNG returned by the service.
const redactedPrefix = "data:image/png;base64,"

// ErrNoRedactedImage is returned when no redacted preview is installed.
var ErrNoRedactedImage = errors.New("no redacted image available")

// =============================================================================
// UPLOAD STATE
// =============================================================================

// UploadState is the currently selected image and its previews.
//
// RedactedPreview is only ever set for the file it was derived from:
// WithFile always clears it.
type UploadState struct {
	File            *upload.File
	PreviewURL      string
	RedactedPreview string
}

// WithFile returns the state for a newly selected file. Any redacted preview
// of the previous file is dropped.
func (u UploadState) WithFile(f upload.File) UploadState {
	return UploadState{
		File:       &f,
		PreviewURL: f.PreviewURL(),
	}
}

// WithRedacted installs the redacted image returned by the service.
// The payload is kept as a data URL; it is decoded on demand.
func (u UploadState) WithRedacted(b64 string) UploadState {
	u.RedactedPreview = redactedPrefix + b64
	return u
}

// HasFile reports whether a file is selected.
func (u UploadState) HasFile() bool {
	return u.File != nil
}

// HasRedacted reports whether a redacted preview is installed.
func (u UploadState) HasRedacted() bool {
	return u.RedactedPreview != ""
}

// RedactedPNG decodes the redacted preview payload.
func (u UploadState) RedactedPNG() ([]byte, error) {
	if u.RedactedPreview == "" {
		return nil, ErrNoRedactedImage
	}
	payload := strings.TrimPrefix(u.RedactedPreview, redactedPrefix)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return data, nil
}
