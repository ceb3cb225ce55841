// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

// Notices shown when a gated control is used.
const (
	noticeWaitingForReply = "Waiting for the AI to reply..."
	noticeDetecting       = "PII detection in progress..."
	noticeNoRedacted      = "No redacted image yet."
	noticeBadRedacted     = "Redacted image payload is not valid base64."
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case EventMsg:
		if msg.Event == nil {
			return m, nil
		}
		return m, m.apply(msg.Event)

	case HealthMsg:
		up := msg.Err == nil
		m.backendUp = &up
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("backend health check failed")
		}
		return m, nil

	case savedMsg:
		if msg.Err != nil {
			m.notice = "Save failed: " + msg.Err.Error()
			m.log.WithError(msg.Err).Error("saving redacted image")
		} else {
			m.notice = "Saved redacted image to " + msg.Path
		}
		return m, nil

	case copiedMsg:
		if msg.Err != nil {
			m.notice = "Copy failed: " + msg.Err.Error()
		} else {
			m.notice = fmt.Sprintf("Copied reply (%d chars)", msg.Chars)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.Loading.Chat {
			m.refresh()
		}
		return m, cmd
	}

	// Directory listings, cursor blinks and the like.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.pathInput, cmd = m.pathInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// apply runs ev through the orchestrator and starts the issued requests.
func (m *Model) apply(ev orchestrator.Event) tea.Cmd {
	var reqs []orchestrator.Request
	m.state, reqs = m.orch.Apply(m.state, ev)

	if m.input.Value() != m.state.Input {
		m.input.SetValue(m.state.Input)
	}
	if n := m.state.Selection.Len(); m.piiCursor >= n {
		m.piiCursor = max(n-1, 0)
	}
	m.refresh()

	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		m.log.WithField("request", requestName(req)).Debug("request issued")
		cmds = append(cmds, m.execute(req))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.help.Width = msg.Width
	m.picker.Height = max(msg.Height-pickerChrome, 5)
	m.refresh()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	m.notice = ""

	// A blocking alert swallows everything until it is dismissed.
	if m.state.HasAlert() {
		if key.Matches(msg, m.keys.Dismiss) {
			return m, m.apply(orchestrator.AlertDismissed{})
		}
		return m, nil
	}

	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Redact):
		switch {
		case m.state.Loading.Chat:
			m.notice = noticeWaitingForReply
			return m, nil
		case !m.state.CanRedact():
			m.notice = orchestrator.NoFileAlert
			return m, nil
		}
		return m, m.apply(orchestrator.RedactAndSend{})

	case key.Matches(msg, m.keys.Clear):
		m.piiCursor = 0
		return m, m.apply(orchestrator.Clear{})

	case key.Matches(msg, m.keys.OpenFile):
		if !m.state.CanSelectFile() {
			m.notice = noticeDetecting
			return m, nil
		}
		return m, m.openPicker()

	case key.Matches(msg, m.keys.Save):
		return m, m.saveRedacted()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLastReply()

	case key.Matches(msg, m.keys.Focus):
		return m, m.toggleFocus()

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusPII {
		return m.handlePIIKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Send) {
		if !m.state.CanSendText() {
			m.notice = noticeWaitingForReply
			return m, nil
		}
		return m, m.apply(orchestrator.SendText{})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if text := m.input.Value(); text != m.state.Input {
		return m, tea.Batch(cmd, m.apply(orchestrator.InputChanged{Text: text}))
	}
	return m, cmd
}

func (m Model) handlePIIKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panel := m.piiPanel(0, 0)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.piiCursor = panel.MoveCursor(-1)
		m.refresh()
	case key.Matches(msg, m.keys.Down):
		m.piiCursor = panel.MoveCursor(1)
		m.refresh()
	case key.Matches(msg, m.keys.Toggle):
		if item, ok := panel.Current(); ok {
			return m, m.apply(orchestrator.ToggleItem{ID: item.ID})
		}
	case key.Matches(msg, m.keys.SelectAll):
		return m, m.apply(orchestrator.ToggleAll{Value: true})
	case key.Matches(msg, m.keys.SelectNone):
		return m, m.apply(orchestrator.ToggleAll{Value: false})
	}
	return m, nil
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusPII
		m.input.Blur()
		m.refresh()
		return nil
	}
	m.focus = focusInput
	m.refresh()
	return m.input.Focus()
}

// =============================================================================
// FILE PICKER
// =============================================================================

func (m *Model) openPicker() tea.Cmd {
	m.pickerOpen = true
	m.pathEntry = false
	m.pathInput.Reset()
	m.pathInput.Blur()
	m.input.Blur()
	return m.picker.Init()
}

func (m *Model) closePicker() tea.Cmd {
	m.pickerOpen = false
	m.pathEntry = false
	m.pathInput.Blur()
	if m.focus == focusInput {
		return m.input.Focus()
	}
	return nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		return m, m.closePicker()
	}

	if key.Matches(msg, m.keys.Focus) {
		m.pathEntry = !m.pathEntry
		if m.pathEntry {
			return m, m.pathInput.Focus()
		}
		m.pathInput.Blur()
		return m, nil
	}

	if m.pathEntry {
		if msg.Type == tea.KeyEnter {
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				return m, nil
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(m.picker.CurrentDirectory, path)
			}
			closeCmd := m.closePicker()
			return m, tea.Batch(closeCmd, m.openFile(path))
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		closeCmd := m.closePicker()
		return m, tea.Batch(cmd, closeCmd, m.openFile(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = "Not an accepted image type: " + filepath.Base(path)
	}
	return m, cmd
}

// openFile validates path and feeds the outcome to the orchestrator.
func (m *Model) openFile(path string) tea.Cmd {
	f, err := m.uploads.Open(path)
	if err != nil {
		m.log.WithError(err).WithField("path", path).Info("file rejected")
		return m.apply(orchestrator.FileRejected{Err: err})
	}
	m.log.WithField("file", f.Describe()).Info("file selected")
	return m.apply(orchestrator.FileSelected{File: f})
}

// =============================================================================
// REDACTED IMAGE
// =============================================================================

func (m *Model) saveRedacted() tea.Cmd {
	data, err := m.state.Upload.RedactedPNG()
	if err != nil {
		if errors.Is(err, model.ErrNoRedactedImage) {
			m.notice = noticeNoRedacted
		} else {
			m.notice = noticeBadRedacted
		}
		return nil
	}
	path := filepath.Join(m.saveDir, RedactedFileName)
	return func() tea.Msg {
		return savedMsg{Path: path, Err: util.WriteFileAtomic(path, data, 0o644, 0o755)}
	}
}
