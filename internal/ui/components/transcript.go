// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
)

// Transcript texts.
const (
	EmptyTranscriptHint = "Start chatting or upload an image to begin."
	TypingIndicator     = "AI is typing..."
)

// Transcript renders the message list, the empty-state hint and the typing
// indicator.
type Transcript struct {
	Messages []model.ChatMessage
	Typing   bool
	Width    int

	// Spinner is drawn before the typing indicator when set.
	Spinner string
}

// View renders the transcript.
func (t Transcript) View(theme *styles.Theme, md *Markdown) string {
	var sections []string
	if len(t.Messages) == 0 {
		sections = append(sections, theme.EmptyHint.Render(EmptyTranscriptHint))
	}
	for _, msg := range t.Messages {
		sections = append(sections, NewMessageBubble(msg, t.Width, theme, md).View())
	}
	if t.Typing {
		indicator := TypingIndicator
		if t.Spinner != "" {
			indicator = t.Spinner + " " + indicator
		}
		sections = append(sections, theme.Typing.Render(indicator))
	}
	return strings.Join(sections, "\n\n")
}
