// secure-ai-chat - chat with an AI about images after redacting their PII.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/FuriousFire05/secure-ai-chat/internal/cli"

func main() {
	cli.Execute()
}
