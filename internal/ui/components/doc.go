// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the render functions for the secure-ai-chat TUI.

Every component is a plain value rendered from orchestrator state; none of
them own or mutate conversation state.

# Components

MessageBubble (message.go) - One transcript entry. User text is shown literally,
assistant text is rendered as markdown.

Transcript (transcript.go) - The message list with the empty-state hint and the
typing indicator.

PIIPanel (pii_panel.go) - Detected items with per-item checkboxes and a cursor.

PreviewPanel (preview.go) - Original and redacted image summaries.

AlertBox (alert.go) - The blocking alert overlay.
*/
package components
