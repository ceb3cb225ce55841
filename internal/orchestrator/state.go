// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
)

// LoadingFlags tracks the two independent request flows.
type LoadingFlags struct {
	// Chat is set while a chat or redact-and-chat request is outstanding.
	Chat bool
	// Detect is set while a detection request is outstanding.
	Detect bool
}

// State is the complete client-side conversation state.
//
// State is a value: transitions return a new State and never modify the one
// they were given. The zero value is the initial state.
type State struct {
	Transcript model.Transcript
	Input      string
	Upload     model.UploadState
	Selection  model.Selection

	// DetectedText is the full OCR text of the last detection, if reported.
	DetectedText string

	Loading LoadingFlags

	// Epoch is bumped on every Clear. Requests carry the epoch they were issued in.
	Epoch uint64

	// Alert is a blocking message the user must dismiss. Empty means none.
	Alert string
}

// CanSendText reports whether the send-text control is enabled.
func (s State) CanSendText() bool {
	return !s.Loading.Chat
}

// CanRedact reports whether the redact-and-send control is enabled.
func (s State) CanRedact() bool {
	return !s.Loading.Chat && s.Upload.HasFile()
}

// CanSelectFile reports whether a new file may be chosen.
func (s State) CanSelectFile() bool {
	return !s.Loading.Detect
}

// HasAlert reports whether a blocking alert is showing.
func (s State) HasAlert() bool {
	return s.Alert != ""
}

// Busy reports whether any request is outstanding.
func (s State) Busy() bool {
	return s.Loading.Chat || s.Loading.Detect
}
