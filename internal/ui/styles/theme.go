// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Panel       lipgloss.Style
	PanelFocus  lipgloss.Style
	PanelTitle  lipgloss.Style
	StatusBar   lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	ImageTag        lipgloss.Style
	Typing          lipgloss.Style
	EmptyHint       lipgloss.Style

	// ==========================================================================
	// PII PANEL
	// ==========================================================================

	ItemRedacted lipgloss.Style
	ItemKept     lipgloss.Style
	ItemCursor   lipgloss.Style
	ItemType     lipgloss.Style

	// ==========================================================================
	// INPUT AND FEEDBACK
	// ==========================================================================

	Input        lipgloss.Style
	Disabled     lipgloss.Style
	AlertBox     lipgloss.Style
	AlertTitle   lipgloss.Style
	Notice       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
}

// NewTheme creates a theme. mode "dark" or "light" overrides background
// detection; anything else detects it from the terminal.
func NewTheme(mode string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch mode {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PanelFocus = t.Panel.
		BorderForeground(Purple)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.RoleLabel = lipgloss.NewStyle().Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.ImageTag = lipgloss.NewStyle().Foreground(Cyan).Italic(true)
	t.Typing = lipgloss.NewStyle().Foreground(Amber).Italic(true)
	t.EmptyHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	// PII panel
	t.ItemRedacted = lipgloss.NewStyle().Foreground(Rose)
	t.ItemKept = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ItemCursor = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.ItemType = lipgloss.NewStyle().Foreground(TextMuted)

	// Input and feedback
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.Disabled = lipgloss.NewStyle().Foreground(TextMuted).Strikethrough(true)

	t.AlertBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.AlertTitle = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.Notice = lipgloss.NewStyle().Foreground(Emerald)

	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Warning = lipgloss.NewStyle().Foreground(Amber)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
}
