// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator holds the client-side conversation state machine.
//
// All state lives in a State value. Orchestrator.Apply is a pure transition:
// it takes a State and an Event (a user intent or a request completion) and
// returns the next State plus the Requests the caller must execute. Each
// Request is turned into a completion event by Execute, which never fails:
// transport errors become *Failed events that the next Apply folds into the
// transcript or an alert.
//
// Two flows share the transcript:
//
//	chat / redact-and-send:  Idle -> Sending (Loading.Chat) -> Idle
//	detect:                  Idle -> Detecting (Loading.Detect) -> Idle
//
// Sending is split into an immediate step (user message appended, input
// cleared) and a completion step (assistant message appended). The completion
// step always clears the loading flag.
//
// Clear bumps State.Epoch. Requests carry the epoch they were issued in; with
// Config.DiscardStale a completion from an older epoch only clears its loading
// flag. Without it, the completion applies to the cleared state.
package orchestrator
