// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for secure-ai-chat.
//
// # Configuration Precedence
//
// Later sources win:
//   - Built-in defaults
//   - ~/.secure-ai-chat/config.toml (or the file passed with --config)
//   - .env in the working directory (never overrides the real environment)
//   - Environment variables (SECURE_CHAT_*)
//   - Command-line flags (applied by the cli package)
//
// # Example
//
//	[backend]
//	url = "http://localhost:8000/api"
//	timeout_secs = 60
//
//	[redaction]
//	redact_by_default = true
//	discard_stale_responses = false
//
// # Thread Safety
//
// Global and SetGlobal are safe for concurrent use. A *Config itself is not
// synchronized; treat it as read-only once published.
package config
