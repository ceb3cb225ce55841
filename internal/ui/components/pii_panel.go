// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

// PII panel texts.
const (
	NoPIIHint     = "No PII detected yet. Upload an image first."
	DetectingHint = "Detecting PII..."
)

// =============================================================================
// PII PANEL COMPONENT
// =============================================================================

// PIIPanel lists detected items with their redaction checkbox.
type PIIPanel struct {
	Items   []model.PiiItem
	Cursor  int
	Focused bool
	Loading bool
	Width   int

	// MaxRows limits the visible rows; 0 shows every item.
	MaxRows int
}

// Title returns the panel heading, "Detected PII (n)".
func (p PIIPanel) Title() string {
	return fmt.Sprintf("Detected PII (%d)", len(p.Items))
}

// View renders the panel.
func (p PIIPanel) View(theme *styles.Theme) string {
	box := theme.Panel
	if p.Focused {
		box = theme.PanelFocus
	}
	inner := clampMin(p.Width-4, 16)

	selected := 0
	for _, item := range p.Items {
		if item.Selected {
			selected++
		}
	}
	title := theme.PanelTitle.Render(p.Title())
	if len(p.Items) > 0 {
		title += theme.ItemType.Render(fmt.Sprintf("  %d to redact", selected))
	}

	lines := []string{title}
	switch {
	case p.Loading:
		lines = append(lines, theme.Typing.Render(DetectingHint))
	case len(p.Items) == 0:
		lines = append(lines, theme.EmptyHint.Render(wordWrap(NoPIIHint, inner)))
	default:
		start, end := p.window()
		if start > 0 {
			lines = append(lines, theme.ItemType.Render(fmt.Sprintf("  ↑ %d more", start)))
		}
		for i := start; i < end; i++ {
			lines = append(lines, p.renderItem(theme, i, inner))
		}
		if rest := len(p.Items) - end; rest > 0 {
			lines = append(lines, theme.ItemType.Render(fmt.Sprintf("  ↓ %d more", rest)))
		}
	}

	return box.Width(inner).Render(strings.Join(lines, "\n"))
}

func (p PIIPanel) renderItem(theme *styles.Theme, i, width int) string {
	item := p.Items[i]

	cursor := "  "
	if p.Focused && i == p.Cursor {
		cursor = theme.ItemCursor.Render("▸ ")
	}
	box := "[ ]"
	if item.Selected {
		box = "[x]"
	}

	typeLabel := util.FitPad(item.Type, 8)
	textWidth := width - runewidth.StringWidth(cursor+box) - 10
	text := util.Fit(util.FirstLine(item.Text), clampMin(textWidth, 4))

	style := theme.ItemKept
	if item.Selected {
		style = theme.ItemRedacted
	}
	return cursor + style.Render(box) + " " + theme.ItemType.Render(typeLabel) + " " + style.Render(text)
}

// window returns the visible item range keeping the cursor on screen.
func (p PIIPanel) window() (int, int) {
	n := len(p.Items)
	if p.MaxRows <= 0 || n <= p.MaxRows {
		return 0, n
	}
	start := p.Cursor - p.MaxRows/2
	if start < 0 {
		start = 0
	}
	if start > n-p.MaxRows {
		start = n - p.MaxRows
	}
	return start, start + p.MaxRows
}

// MoveCursor returns the cursor moved by delta and clamped to the items.
func (p PIIPanel) MoveCursor(delta int) int {
	c := p.Cursor + delta
	if c >= len(p.Items) {
		c = len(p.Items) - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// Current returns the item under the cursor.
func (p PIIPanel) Current() (model.PiiItem, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Items) {
		return model.PiiItem{}, false
	}
	return p.Items[p.Cursor], true
}
