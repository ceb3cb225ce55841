// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the full-screen terminal front end.
//
// Model is a Bubble Tea model that owns one orchestrator.State. Key presses
// become orchestrator events, events are applied with Orchestrator.Apply, and
// every request the orchestrator issues runs as a tea.Cmd whose result comes
// back as another event. Rendering is a pure function of the state plus a few
// presentation-only fields (focus, cursor, notice).
//
// Layout:
//
//	+-------------------------------------------+------------------+
//	| header                                    |                  |
//	+-------------------------------------------+ Original Preview |
//	| transcript (viewport)                     | Redacted Preview |
//	|                                           | Detected PII (n) |
//	+-------------------------------------------+                  |
//	| input                                     |                  |
//	+-------------------------------------------+------------------+
//	| status / help                                                |
//	+--------------------------------------------------------------+
//
// Narrow terminals stack the side column above the transcript.
package chat
