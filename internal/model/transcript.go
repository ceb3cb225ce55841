// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the append-only ordered list of chat messages.
//
// The zero value is an empty transcript. Append never writes into the
// receiver's backing array, so earlier Transcript values stay valid after a
// later Append; this is what lets the orchestrator treat state as a value.
type Transcript struct {
	messages []ChatMessage
}

// NewTranscript creates a transcript holding msgs in order.
func NewTranscript(msgs ...ChatMessage) Transcript {
	var t Transcript
	for _, m := range msgs {
		t = t.Append(m)
	}
	return t
}

// Append returns a new transcript with msg added at the end.
func (t Transcript) Append(msg ChatMessage) Transcript {
	next := make([]ChatMessage, len(t.messages), len(t.messages)+1)
	copy(next, t.messages)
	return Transcript{messages: append(next, msg)}
}

// Len returns the number of messages.
func (t Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty returns true if the transcript has no messages.
func (t Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// Messages returns a copy of the messages in order.
func (t Transcript) Messages() []ChatMessage {
	out := make([]ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// At returns the message at index i.
func (t Transcript) At(i int) ChatMessage {
	return t.messages[i]
}

// Last returns the most recent message and false if the transcript is empty.
func (t Transcript) Last() (ChatMessage, bool) {
	if len(t.messages) == 0 {
		return ChatMessage{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastAssistant returns the most recent assistant message.
func (t Transcript) LastAssistant() (ChatMessage, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleAssistant {
			return t.messages[i], true
		}
	}
	return ChatMessage{}, false
}
