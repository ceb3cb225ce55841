// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the secure-ai-chat command tree.
//
// Running the binary without a subcommand starts the full-screen client.
// The other commands cover scripted use of the PII service:
//
//	secure-ai-chat                         full-screen client (same as "tui")
//	secure-ai-chat chat                    line-mode client
//	secure-ai-chat ask "question"          one text-only chat turn
//	secure-ai-chat detect scan.png         list detected PII
//	secure-ai-chat redact scan.png -o out.png --select 3,12 -m "summarize"
//	secure-ai-chat health                  check the service
//	secure-ai-chat mock-backend            serve a fake PII service locally
//	secure-ai-chat config show|init|path   inspect the configuration
//	secure-ai-chat version
//
// Global flags (--config, --backend, --log-level, --theme) override the
// config file and the environment.
package cli
