// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeForcedModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	if !dark.IsDark {
		t.Error("dark theme reports light background")
	}
	if got := dark.GlamourStyle(); got != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", got)
	}

	light := NewTheme(ModeLight)
	if light.IsDark {
		t.Error("light theme reports dark background")
	}
	if got := light.GlamourStyle(); got != "light" {
		t.Errorf("GlamourStyle() = %q, want light", got)
	}
}

func TestThemeRendersText(t *testing.T) {
	theme := NewTheme(ModeDark)
	for name, s := range map[string]string{
		"header": theme.Header.Render("Secure AI Chat"),
		"alert":  theme.AlertBox.Render("PII detection failed."),
		"item":   theme.ItemRedacted.Render("[x] Jane Doe"),
		"typing": theme.Typing.Render("AI is typing..."),
	} {
		if s == "" {
			t.Errorf("%s style rendered empty string", name)
		}
	}
}
