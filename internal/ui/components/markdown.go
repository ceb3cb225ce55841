// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown renders assistant replies. Renderers are built lazily per wrap
// width and reused. Safe for concurrent use.
type Markdown struct {
	style string

	// MaxWidth caps the wrap width. 0 means no cap.
	MaxWidth int

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer using a glamour standard style ("dark",
// "light", "notty"). An empty style detects it from the terminal.
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render returns text rendered at width. On any renderer error the text is
// returned unchanged.
func (m *Markdown) Render(text string, width int) string {
	if m == nil {
		return text
	}
	if m.MaxWidth > 0 && width > m.MaxWidth {
		width = m.MaxWidth
	}
	r := m.renderer(width)
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) renderer(width int) *glamour.TermRenderer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if m.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		r = nil
	}
	m.renderers[width] = r
	return r
}
