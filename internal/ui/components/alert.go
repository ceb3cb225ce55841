// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
)

// AlertDismissHint is shown below every alert.
const AlertDismissHint = "press enter or esc to dismiss"

// AlertBox renders a blocking alert centered in a width x height area.
func AlertBox(message string, width, height int, theme *styles.Theme) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.AlertTitle.Render("Alert"),
		"",
		wordWrap(message, clampMin(width/2, 24)),
		"",
		theme.ShortcutDesc.Render(AlertDismissHint),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.AlertBox.Render(body))
}
