// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimestampLayout is used when no layout is configured.
const DefaultTimestampLayout = "15:04:05"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ChatMessage is a single entry of the transcript.
// Messages are values; once appended to a Transcript they are never modified.
type ChatMessage struct {
	// ID is a display key only. It carries no protocol meaning.
	ID   string `json:"id"`
	Role Role   `json:"role"`

	// Text is literal for user messages and markdown for assistant replies.
	Text string `json:"text"`

	// ImageURL references a displayable image (the local preview), if any.
	ImageURL string `json:"image_url,omitempty"`

	// Timestamp is formatted once at creation and never recomputed.
	Timestamp string `json:"timestamp"`
}

// NewMessage creates a message stamped with now formatted using layout.
func NewMessage(role Role, text string, now time.Time, layout string) ChatMessage {
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: now.Format(layout),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string, now time.Time, layout string) ChatMessage {
	return NewMessage(RoleUser, text, now, layout)
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(text string, now time.Time, layout string) ChatMessage {
	return NewMessage(RoleAssistant, text, now, layout)
}

// WithImage returns a copy of the message referencing imageURL.
func (m ChatMessage) WithImage(imageURL string) ChatMessage {
	m.ImageURL = imageURL
	return m
}

// IsUser reports whether the message was authored by the user.
func (m ChatMessage) IsUser() bool {
	return m.Role == RoleUser
}

// HasImage reports whether the message carries an image reference.
func (m ChatMessage) HasImage() bool {
	return m.ImageURL != ""
}
