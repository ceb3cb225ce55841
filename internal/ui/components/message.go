// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one transcript entry.
type MessageBubble struct {
	Message model.ChatMessage
	Width   int

	theme *styles.Theme
	md    *Markdown
}

// NewMessageBubble creates a bubble. md may be nil, in which case assistant
// text is shown literally.
func NewMessageBubble(msg model.ChatMessage, width int, theme *styles.Theme, md *Markdown) MessageBubble {
	return MessageBubble{Message: msg, Width: width, theme: theme, md: md}
}

// View renders the message bubble.
func (b MessageBubble) View() string {
	if b.Message.IsUser() {
		return b.renderUser()
	}
	return b.renderAssistant()
}

// ==========================================================================
// USER BUBBLE - right-aligned, text shown exactly as typed
// ==========================================================================

func (b MessageBubble) renderUser() string {
	content := wordWrap(b.Message.Text, b.contentWidth())
	if b.Message.HasImage() {
		tag := b.theme.ImageTag.Render("[image] " + b.Message.ImageURL)
		content = tag + "\n" + content
	}

	bubble := b.theme.UserBubble.
		Width(clampMin(maxLineWidth(content)+2, 10)).
		Render(content)
	header := b.header(b.theme.RoleLabel.Foreground(styles.Cyan).Render(b.Message.Role.DisplayName()))

	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right,
		lipgloss.JoinVertical(lipgloss.Right, header, bubble))
}

// ==========================================================================
// ASSISTANT BUBBLE - left-aligned, markdown rendered
// ==========================================================================

func (b MessageBubble) renderAssistant() string {
	var content string
	if b.md != nil {
		content = b.md.Render(b.Message.Text, b.contentWidth())
	} else {
		content = wordWrap(b.Message.Text, b.contentWidth())
	}
	if strings.TrimSpace(content) == "" {
		content = "..."
	}

	bubble := b.theme.AssistantBubble.Render(content)
	header := b.header(b.theme.RoleLabel.Foreground(styles.Purple).Render(b.Message.Role.DisplayName()))

	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}

func (b MessageBubble) header(role string) string {
	if b.Message.Timestamp == "" {
		return role
	}
	return role + " " + b.theme.Timestamp.Render(b.Message.Timestamp)
}

// contentWidth leaves room for border, padding and the side margin.
func (b MessageBubble) contentWidth() int {
	return clampMin(b.Width-12, 20)
}
