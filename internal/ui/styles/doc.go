// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the secure-ai-chat TUI.
//
// All colors are Lip Gloss AdaptiveColors, so they follow the terminal's
// light or dark background unless a theme is forced in the config.
package styles
