// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/fakebackend"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/components"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type harness struct {
	fake    *fakebackend.Server
	client  *backend.Client
	saveDir string
	copied  string
}

func newHarness(t *testing.T, opts fakebackend.Options, maxBytes int64) (*harness, Model) {
	t.Helper()
	h := &harness{fake: fakebackend.New(opts), saveDir: t.TempDir()}
	srv := httptest.NewServer(h.fake.Handler())
	t.Cleanup(srv.Close)
	h.client = backend.NewClient(&backend.ClientConfig{
		BaseURL: srv.URL + fakebackend.APIPrefix,
		Timeout: 5 * time.Second,
	})

	m := New(Options{
		Orchestrator: orchestrator.New(orchestrator.Config{}),
		Backend:      h.client,
		Health:       h.client.Health,
		Upload:       upload.NewControl(maxBytes, nil),
		Theme:        styles.NewTheme(styles.ModeDark),
		Markdown:     components.NewMarkdown("dark"),
		StartDir:     t.TempDir(),
		SaveDir:      h.saveDir,
		Timeout:      5 * time.Second,
		Clipboard: func(s string) error {
			h.copied = s
			return nil
		},
	})
	m.input.Cursor.SetMode(cursor.CursorStatic)
	m.pathInput.Cursor.SetMode(cursor.CursorStatic)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return h, m
}

// send feeds msg to m and runs every resulting command to completion.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return run(t, next.(Model), cmd)
}

// step feeds msg without running the commands it returns.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
	case EventMsg, HealthMsg, savedMsg, copiedMsg:
		m = send(t, m, msg)
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: k})
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.Set(2, 2, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "card.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// pickFile opens the picker and enters path at the path prompt.
func pickFile(t *testing.T, m Model, path string) Model {
	t.Helper()
	m = press(t, m, tea.KeyCtrlO)
	require.True(t, m.pickerOpen)
	m = press(t, m, tea.KeyTab)
	require.True(t, m.pathEntry)
	m = typeText(t, m, path)
	return press(t, m, tea.KeyEnter)
}

func screen(m Model) string {
	return ansi.Strip(m.View())
}

// =============================================================================
// TESTS
// =============================================================================

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{Orchestrator: orchestrator.New(orchestrator.Config{})})
	assert.Equal(t, "Initializing...", m.View())
}

func TestInitialScreen(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	out := screen(m)

	assert.Contains(t, out, components.EmptyTranscriptHint)
	assert.Contains(t, out, "Detected PII (0)")
	// The empty-list hint wraps inside the sidebar.
	assert.Contains(t, out, "No PII detected yet. Upload an image")
	assert.Contains(t, out, "first.")
	assert.NotContains(t, out, "firs…")
	assert.Contains(t, out, components.NoImageHint)
	assert.Contains(t, out, components.NoRedactedHint)
	assert.Contains(t, out, "(JPEG/PNG, < 5MB)")
}

func TestSendTextRoundTrip(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{ChatReply: "Hi there"}, 0)

	m = typeText(t, m, "Hello")
	assert.Equal(t, "Hello", m.State().Input)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.State().Loading.Chat)
	assert.Empty(t, m.State().Input)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, screen(m), components.TypingIndicator)

	// Send is disabled while the reply is outstanding.
	m = typeText(t, m, "again")
	m, second := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
	assert.Equal(t, noticeWaitingForReply, m.Notice())
	assert.Equal(t, "again", m.State().Input)

	m = run(t, m, cmd)
	st := m.State()
	assert.False(t, st.Loading.Chat)
	require.Equal(t, 2, st.Transcript.Len())
	assert.Equal(t, "Hello", st.Transcript.At(0).Text)
	assert.Equal(t, model.RoleAssistant, st.Transcript.At(1).Role)
	assert.Equal(t, "Hi there", st.Transcript.At(1).Text)
	assert.Contains(t, screen(m), "Hi there")
	assert.NotContains(t, screen(m), components.TypingIndicator)

	last, ok := h.fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "Hello", last.Message)
}

func TestBlankInputSendsNothing(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{}, 0)
	m = typeText(t, m, "   ")
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, run(t, m, cmd).State().Transcript.IsEmpty())
	assert.Empty(t, h.fake.Requests())
}

func TestChatFailureShowsDiagnostic(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{FailChat: true}, 0)
	m = typeText(t, m, "Hello")
	m = press(t, m, tea.KeyEnter)

	last, ok := m.State().Transcript.Last()
	require.True(t, ok)
	assert.Equal(t, orchestrator.ChatErrorText, last.Text)
	assert.False(t, m.State().HasAlert())
}

func TestUploadToggleAndRedact(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{}, 0)
	path := writePNG(t, t.TempDir())

	m = pickFile(t, m, path)
	assert.False(t, m.pickerOpen)
	st := m.State()
	require.True(t, st.Upload.HasFile())
	assert.False(t, st.Loading.Detect)
	require.Equal(t, 3, st.Selection.Len())
	assert.Equal(t, 3, st.Selection.SelectedCount())
	assert.Contains(t, screen(m), "Detected PII (3)")
	assert.Contains(t, screen(m), "card.png")

	// Deselect the phone number.
	m = press(t, m, tea.KeyTab)
	require.Equal(t, focusPII, m.focus)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeySpace)
	assert.Equal(t, 2, m.State().Selection.SelectedCount())

	m = press(t, m, tea.KeyTab)
	m = typeText(t, m, "What is this?")
	m = press(t, m, tea.KeyCtrlR)

	last, ok := h.fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "[3,12]", last.SelectedIDs)
	assert.Equal(t, "What is this?", last.Message)
	assert.Equal(t, "card.png", last.FileName)

	st = m.State()
	assert.False(t, st.Loading.Chat)
	require.Equal(t, 2, st.Transcript.Len())
	assert.Equal(t, "What is this?", st.Transcript.At(0).Text)
	assert.True(t, st.Transcript.At(0).HasImage())
	assert.Equal(t, "What is this? (2 item(s) redacted)", st.Transcript.At(1).Text)
	assert.True(t, st.Upload.HasRedacted())
	assert.Contains(t, screen(m), components.SaveRedactedTip)

	// The fake service echoes the upload as the redacted image.
	m = press(t, m, tea.KeyCtrlS)
	saved, err := os.ReadFile(filepath.Join(h.saveDir, RedactedFileName))
	require.NoError(t, err)
	assert.Equal(t, st.Upload.File.Data, saved)
	assert.Contains(t, m.Notice(), "Saved redacted image")
}

func TestRedactWithBlankInputUsesPlaceholder(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{}, 0)
	m = pickFile(t, m, writePNG(t, t.TempDir()))
	m = typeText(t, m, "   ")
	m = press(t, m, tea.KeyCtrlR)

	last, ok := h.fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, backend.PathRedactAndChat, last.Path)
	assert.Equal(t, orchestrator.ImagePlaceholder, last.Message)
	assert.Equal(t, "[3,7,12]", last.SelectedIDs)

	st := m.State()
	require.Equal(t, 2, st.Transcript.Len())
	assert.Equal(t, orchestrator.ImagePlaceholder, st.Transcript.At(0).Text)
	assert.True(t, st.Transcript.At(0).HasImage())
	assert.Equal(t, orchestrator.ImagePlaceholder+" (3 item(s) redacted)", st.Transcript.At(1).Text)
	assert.Empty(t, st.Input)
}

func TestSelectAllAndNone(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	m = pickFile(t, m, writePNG(t, t.TempDir()))
	m = press(t, m, tea.KeyTab)

	m = typeText(t, m, "n")
	assert.Equal(t, 0, m.State().Selection.SelectedCount())
	assert.Contains(t, screen(m), "[ ] email")

	m = typeText(t, m, "a")
	assert.Equal(t, 3, m.State().Selection.SelectedCount())
	assert.Contains(t, screen(m), "[x] email")
}

func TestRedactWithoutFileIsGated(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{}, 0)
	m = press(t, m, tea.KeyCtrlR)

	assert.Equal(t, orchestrator.NoFileAlert, m.Notice())
	assert.False(t, m.State().HasAlert())
	assert.Empty(t, h.fake.Requests())
}

func TestDetectFailureRaisesAlert(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{FailDetect: true}, 0)
	m = pickFile(t, m, writePNG(t, t.TempDir()))

	st := m.State()
	assert.Equal(t, orchestrator.DetectFailedAlert, st.Alert)
	assert.False(t, st.Loading.Detect)
	assert.Contains(t, screen(m), orchestrator.DetectFailedAlert)

	// Other keys are ignored while the alert is up.
	m = typeText(t, m, "x")
	assert.Empty(t, m.State().Input)

	m = press(t, m, tea.KeyEsc)
	assert.False(t, m.State().HasAlert())
}

func TestOversizedFileIsRejected(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{}, 16)
	m = pickFile(t, m, writePNG(t, t.TempDir()))

	st := m.State()
	assert.Contains(t, st.Alert, "File too large")
	assert.False(t, st.Upload.HasFile())
	assert.Empty(t, h.fake.Requests())
}

func TestPickerClosesOnEscape(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	m = press(t, m, tea.KeyCtrlO)
	assert.Contains(t, screen(m), "Select an image")

	m = press(t, m, tea.KeyEsc)
	assert.False(t, m.pickerOpen)
	assert.True(t, m.input.Focused())
}

func TestClearResetsConversation(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	m = pickFile(t, m, writePNG(t, t.TempDir()))
	m = typeText(t, m, "Hello")
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, 2, m.State().Transcript.Len())

	m = press(t, m, tea.KeyCtrlL)
	st := m.State()
	assert.True(t, st.Transcript.IsEmpty())
	assert.False(t, st.Upload.HasFile())
	assert.Equal(t, 0, st.Selection.Len())
	assert.Contains(t, screen(m), components.EmptyTranscriptHint)
}

func TestCopyLastReply(t *testing.T) {
	h, m := newHarness(t, fakebackend.Options{ChatReply: "copy me"}, 0)

	m = press(t, m, tea.KeyCtrlY)
	assert.Equal(t, "No response to copy", m.Notice())

	m = typeText(t, m, "Hello")
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyCtrlY)
	assert.Equal(t, "copy me", h.copied)
	assert.Equal(t, "Copied reply (7 chars)", m.Notice())
}

func TestSaveWithoutRedactedImage(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	m = press(t, m, tea.KeyCtrlS)
	assert.Equal(t, noticeNoRedacted, m.Notice())
}

func TestHealthStatus(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	m = run(t, m, m.checkHealth())
	assert.Contains(t, screen(m), "backend ok")

	m = send(t, m, HealthMsg{Err: backend.ErrUnreachable})
	assert.Contains(t, screen(m), "backend unreachable")
}

func TestNarrowLayout(t *testing.T) {
	_, m := newHarness(t, fakebackend.Options{}, 0)
	m = send(t, m, tea.WindowSizeMsg{Width: 70, Height: 40})

	out := screen(m)
	assert.Contains(t, out, "Detected PII (0)")
	assert.Contains(t, out, components.EmptyTranscriptHint)
	assert.Equal(t, 70, m.viewport.Width)
}

func TestExecuteAgainstUnreachableBackend(t *testing.T) {
	client := backend.NewClient(&backend.ClientConfig{
		BaseURL: "http://127.0.0.1:1/api",
		Timeout: time.Second,
	})
	m := New(Options{Orchestrator: orchestrator.New(orchestrator.Config{}), Backend: client})

	msg := m.execute(orchestrator.ChatRequest{Epoch: 4, Message: "hi"})()
	ev, ok := msg.(EventMsg)
	require.True(t, ok)
	failed, ok := ev.Event.(orchestrator.ChatFailed)
	require.True(t, ok)
	assert.Equal(t, uint64(4), failed.Epoch)
	assert.Error(t, failed.Err)
}
