// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the transcript, detected PII
// items and upload state.
//
// All types are values. Operations return updated copies and never mutate
// shared backing arrays, so the orchestrator can keep its state as a plain
// struct and compare snapshots in tests.
//
// # Key Types
//
//   - ChatMessage: one transcript entry (role, text, optional image, timestamp)
//   - Transcript: append-only ordered list of ChatMessage
//   - ItemID: detector-issued id that round-trips its JSON type
//   - PiiItem: a detected candidate with its selected flag
//   - Selection: the PII selection model (replace, toggle, select all)
//   - SelectionPolicy: initial selected flag for newly detected items
//   - UploadState: selected file, local preview and redacted preview
//
// # Usage
//
//	sel := model.Selection{}.ReplaceAll(items, model.RedactAll)
//	sel = sel.Toggle(model.StringID("1"))
//	ids := sel.SelectedIDs()
package model
