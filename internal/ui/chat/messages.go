// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
)

// =============================================================================
// MESSAGES
// =============================================================================

// EventMsg feeds an orchestrator event into the model. Request commands
// return one when they complete; callers may also send intents directly.
type EventMsg struct {
	Event orchestrator.Event
}

// HealthMsg reports the result of the startup health check.
type HealthMsg struct {
	Err error
}

// savedMsg reports the result of writing the redacted image.
type savedMsg struct {
	Path string
	Err  error
}

// copiedMsg reports the result of copying the last reply.
type copiedMsg struct {
	Chars int
	Err   error
}
