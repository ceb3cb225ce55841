// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/components"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 80 when it is not a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// =============================================================================
// PRINTER
// =============================================================================

func okMark() string   { return color.GreenString("✓") }
func failMark() string { return color.RedString("✗") }
func warnMark() string { return color.YellowString("!") }

// printer writes human-readable output. Assistant replies are rendered as
// markdown only when out is a terminal.
type printer struct {
	out   io.Writer
	md    *components.Markdown
	width int
}

func newPrinter(out io.Writer, glamourStyle string, wordWrap int) *printer {
	p := &printer{out: out, width: terminalWidth(out)}
	if wordWrap > 0 && wordWrap < p.width {
		p.width = wordWrap
	}
	if isTerminal(out) {
		p.md = components.NewMarkdown(glamourStyle)
	}
	return p
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) ok(format string, args ...any) {
	p.printf("%s %s\n", okMark(), fmt.Sprintf(format, args...))
}

func (p *printer) warn(format string, args ...any) {
	p.printf("%s %s\n", warnMark(), fmt.Sprintf(format, args...))
}

func (p *printer) reply(text string) {
	if p.md != nil {
		p.printf("%s\n", p.md.Render(text, p.width))
		return
	}
	p.printf("%s\n", text)
}

// message prints one transcript entry.
func (p *printer) message(msg model.ChatMessage) {
	label := color.CyanString(msg.Role.DisplayName())
	if !msg.IsUser() {
		label = color.MagentaString(msg.Role.DisplayName())
	}
	if msg.Timestamp != "" {
		label += " " + color.HiBlackString(msg.Timestamp)
	}
	p.printf("%s\n", label)
	if msg.HasImage() {
		p.printf("  %s\n", color.CyanString("[image] "+msg.ImageURL))
	}
	if msg.IsUser() {
		p.printf("%s\n", msg.Text)
	} else {
		p.reply(msg.Text)
	}
	p.printf("\n")
}

// items prints the detected PII list with redaction marks.
func (p *printer) items(items []model.PiiItem) {
	p.printf("%s\n", color.New(color.Bold).Sprintf("Detected PII (%d)", len(items)))
	if len(items) == 0 {
		p.printf("  %s\n", color.HiBlackString("none"))
		return
	}

	idWidth := 2
	for _, item := range items {
		idWidth = max(idWidth, len(item.ID.String()))
	}
	for _, item := range items {
		mark := "[ ]"
		if item.Selected {
			mark = color.RedString("[x]")
		}
		text := util.Fit(util.FirstLine(item.Text), max(p.width-idWidth-18, 8))
		p.printf("  %s %-*s %s %s\n", mark, idWidth, item.ID.String(), util.FitPad(item.Type, 8), text)
	}
}

// detectedText prints the OCR text, indented.
func (p *printer) detectedText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.printf("\n%s\n", color.New(color.Bold).Sprint("Detected text"))
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		p.printf("  %s\n", line)
	}
}
