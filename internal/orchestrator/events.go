// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is anything that can drive a state transition: a user intent or a
// request completion.
type Event interface {
	event()
}

// User intents.
type (
	// InputChanged replaces the input text.
	InputChanged struct{ Text string }

	// SendText sends the current input as a text-only chat message.
	SendText struct{}

	// FileSelected starts detection on an accepted file.
	FileSelected struct{ File upload.File }

	// FileRejected reports a file the upload control refused.
	FileRejected struct{ Err error }

	// ToggleAll sets every detected item to Value.
	ToggleAll struct{ Value bool }

	// ToggleItem flips one detected item.
	ToggleItem struct{ ID model.ItemID }

	// RedactAndSend sends the file, the selected ids and the input.
	RedactAndSend struct{}

	// Clear resets the conversation.
	Clear struct{}

	// AlertDismissed closes the blocking alert.
	AlertDismissed struct{}
)

// Request completions. Epoch is copied from the request.
type (
	ChatSucceeded struct {
		Epoch uint64
		Reply string
	}

	ChatFailed struct {
		Epoch uint64
		Err   error
	}

	DetectSucceeded struct {
		Epoch uint64
		Items []model.PiiItem
		Text  string
	}

	DetectFailed struct {
		Epoch uint64
		Err   error
	}

	RedactSucceeded struct {
		Epoch               uint64
		Reply               string
		RedactedImageBase64 string
	}

	RedactFailed struct {
		Epoch uint64
		Err   error
	}
)

func (InputChanged) event()    {}
func (SendText) event()        {}
func (FileSelected) event()    {}
func (FileRejected) event()    {}
func (ToggleAll) event()       {}
func (ToggleItem) event()      {}
func (RedactAndSend) event()   {}
func (Clear) event()           {}
func (AlertDismissed) event()  {}
func (ChatSucceeded) event()   {}
func (ChatFailed) event()      {}
func (DetectSucceeded) event() {}
func (DetectFailed) event()    {}
func (RedactSucceeded) event() {}
func (RedactFailed) event()    {}

// =============================================================================
// REQUESTS
// =============================================================================

// Request is an effect the caller must execute. Its outcome comes back as a
// completion event carrying the same epoch.
type Request interface {
	IssuedIn() uint64
}

// ChatRequest asks for a text-only chat reply.
type ChatRequest struct {
	Epoch   uint64
	Message string
}

// DetectRequest asks for PII detection on File.
type DetectRequest struct {
	Epoch uint64
	File  upload.File
}

// RedactRequest asks for redaction of SelectedIDs in File plus a chat reply.
type RedactRequest struct {
	Epoch       uint64
	File        upload.File
	Message     string
	SelectedIDs []model.ItemID
}

func (r ChatRequest) IssuedIn() uint64   { return r.Epoch }
func (r DetectRequest) IssuedIn() uint64 { return r.Epoch }
func (r RedactRequest) IssuedIn() uint64 { return r.Epoch }
