// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

// Preview panel texts.
const (
	NoImageHint     = "No image selected yet."
	NoRedactedHint  = "Redacted image will appear here."
	UploadHint      = "ctrl+o: upload image (JPEG/PNG, < %s)"
	SaveRedactedTip = "ctrl+s: download redacted image"
)

// =============================================================================
// PREVIEW PANELS
// =============================================================================

// PreviewPanel summarizes the selected image and its redacted counterpart.
// A terminal cannot show the pixels, so each side shows what it refers to.
type PreviewPanel struct {
	Upload model.UploadState
	Width  int
}

// View renders the original and redacted panels stacked.
func (p PreviewPanel) View(theme *styles.Theme) string {
	inner := clampMin(p.Width-4, 16)
	return theme.Panel.Width(inner).Render(p.original(theme, inner)) + "\n" +
		theme.Panel.Width(inner).Render(p.redacted(theme, inner))
}

func (p PreviewPanel) original(theme *styles.Theme, width int) string {
	lines := []string{theme.PanelTitle.Render("Original Preview")}
	if !p.Upload.HasFile() {
		return strings.Join(append(lines, theme.EmptyHint.Render(NoImageHint)), "\n")
	}
	f := p.Upload.File
	lines = append(lines,
		util.Fit(f.Describe(), width),
		theme.ImageTag.Render(util.Fit(p.Upload.PreviewURL, width)),
	)
	return strings.Join(lines, "\n")
}

func (p PreviewPanel) redacted(theme *styles.Theme, width int) string {
	lines := []string{theme.PanelTitle.Render("Redacted Preview")}
	if !p.Upload.HasRedacted() {
		return strings.Join(append(lines, theme.EmptyHint.Render(NoRedactedHint)), "\n")
	}

	data, err := p.Upload.RedactedPNG()
	if err != nil {
		lines = append(lines, theme.Warning.Render(util.Fit("received (payload is not valid base64)", width)))
	} else {
		summary := "redacted.png · " + humanize.IBytes(uint64(len(data)))
		if f := upload.NewFile("redacted.png", data); f.Width > 0 {
			summary = f.Describe()
		}
		lines = append(lines, theme.Success.Render(util.Fit(summary, width)))
	}
	lines = append(lines, theme.ShortcutDesc.Render(util.Fit(SaveRedactedTip, width)))
	return strings.Join(lines, "\n")
}
