// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/FuriousFire05/secure-ai-chat/internal/ui/components"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// Layout constants. Heights are in rows, widths in cells.
const (
	headerHeight = 1
	statusHeight = 1
	inputHeight  = 5 // top border + textarea + controls line
	sideWidth    = 46
	minWideWidth = 100
	previewRows  = 11
	pickerChrome = 12
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) wide() bool {
	return m.width >= minWideWidth
}

func (m Model) mainWidth() int {
	if m.wide() {
		return m.width - sideWidth
	}
	return m.width
}

// refresh recomputes component sizes and the transcript content.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	mainW := m.mainWidth()
	m.input.SetWidth(max(mainW-4, 10))

	bodyHeight := m.height - headerHeight - statusHeight - inputHeight
	if !m.wide() {
		bodyHeight -= lipgloss.Height(m.renderSide(m.width))
	}
	m.viewport.Width = max(mainW, 1)
	m.viewport.Height = max(bodyHeight, 3)

	atBottom := m.viewport.AtBottom()
	before := m.viewport.TotalLineCount()
	m.viewport.SetContent(m.renderTranscript(mainW))
	if atBottom || m.viewport.TotalLineCount() != before {
		m.viewport.GotoBottom()
	}
}

func (m Model) piiPanel(width, rows int) components.PIIPanel {
	return components.PIIPanel{
		Items:   m.state.Selection.Items(),
		Cursor:  m.piiCursor,
		Focused: m.focus == focusPII,
		Loading: m.state.Loading.Detect,
		Width:   width,
		MaxRows: rows,
	}
}

func (m Model) piiRows() int {
	if !m.wide() {
		return 3
	}
	return max(m.height-headerHeight-statusHeight-previewRows-6, 3)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.state.HasAlert() {
		return components.AlertBox(m.state.Alert, m.width, m.height, m.theme)
	}
	if m.pickerOpen {
		return m.renderPicker()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInput(m.mainWidth()),
	)

	var body string
	if m.wide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderSide(sideWidth))
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderSide(m.width), main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatus())
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Secure AI Chat")
	subtitle := m.theme.ShortcutDesc.Render("  PII-safe image chat")

	var status string
	switch {
	case m.backendUp == nil:
		status = ""
	case *m.backendUp:
		status = m.theme.Success.Render("● backend ok")
	default:
		status = m.theme.Error.Render("● backend unreachable")
	}

	left := title + subtitle
	gap := max(m.width-2-lipgloss.Width(left)-lipgloss.Width(status), 1)
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + status)
}

func (m Model) renderTranscript(width int) string {
	return components.Transcript{
		Messages: m.state.Transcript.Messages(),
		Typing:   m.state.Loading.Chat,
		Width:    width,
		Spinner:  m.spinner.View(),
	}.View(m.theme, m.md)
}

func (m Model) renderInput(width int) string {
	field := m.theme.Input.Width(max(width-2, 1)).Render(m.input.View())
	return field + "\n" + m.renderControls()
}

// renderControls shows each control struck through while it is disabled.
func (m Model) renderControls() string {
	control := func(k, desc string, enabled bool) string {
		if !enabled {
			return m.theme.Disabled.Render(k + " " + desc)
		}
		return m.theme.ShortcutKey.Render(k) + " " + m.theme.ShortcutDesc.Render(desc)
	}
	return strings.Join([]string{
		control("enter", "send", m.state.CanSendText()),
		control("C-r", "redact & send", m.state.CanRedact()),
		control("C-o", "upload image", m.state.CanSelectFile()),
	}, "  ")
}

func (m Model) renderSide(width int) string {
	var hint string
	if m.state.CanSelectFile() {
		hint = m.theme.ShortcutDesc.Render(m.uploadHint())
	} else {
		hint = m.theme.Typing.Render(components.DetectingHint)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		" "+hint,
		components.PreviewPanel{Upload: m.state.Upload, Width: width}.View(m.theme),
		m.piiPanel(width, m.piiRows()).View(m.theme),
	)
}

func (m Model) uploadHint() string {
	return fmt.Sprintf(components.UploadHint, upload.FormatLimit(m.uploads.MaxBytes))
}

func (m Model) renderStatus() string {
	if m.notice != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.theme.Notice.Render(m.notice))
	}
	return m.theme.StatusBar.Width(m.width).Render(m.help.View(m.keys))
}

func (m Model) renderPicker() string {
	title := m.theme.PanelTitle.Render("Select an image") + "  " +
		m.theme.ItemType.Render(m.picker.CurrentDirectory)

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.theme.ShortcutDesc.Render(m.uploadHint()),
		"",
		m.picker.View(),
		"",
		m.pathInput.View(),
	)
	box := m.theme.PanelFocus.Width(max(m.width-4, 20)).Render(body)
	status := m.theme.StatusBar.Width(m.width).Render(m.help.View(pickerHelp{keys: m.keys, pathEntry: m.pathEntry}))
	if m.notice != "" {
		status = m.theme.StatusBar.Width(m.width).Render(m.theme.Notice.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), box, status)
}
