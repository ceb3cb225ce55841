// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/FuriousFire05/secure-ai-chat/internal/logging"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/components"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// RedactedFileName is the name the redacted image is saved under.
const RedactedFileName = "redacted.png"

// focusArea is the pane receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusPII
)

// Options configures a Model. Orchestrator and Backend are required.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Backend      orchestrator.Backend

	// Health is called once at startup when set.
	Health func(ctx context.Context) error

	// Upload validates picked files. Nil means upload.NewControl(0, nil).
	Upload *upload.Control

	Theme    *styles.Theme
	Markdown *components.Markdown

	// StartDir is where the picker opens; SaveDir receives redacted.png.
	// Empty means the working directory.
	StartDir string
	SaveDir  string

	// Timeout bounds each request. Zero leaves it to the client.
	Timeout time.Duration

	Logger logrus.FieldLogger

	// Clipboard writes text to the system clipboard. Nil means atotto/clipboard.
	Clipboard func(string) error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	orch      *orchestrator.Orchestrator
	api       orchestrator.Backend
	health    func(ctx context.Context) error
	uploads   *upload.Control
	timeout   time.Duration
	saveDir   string
	clipboard func(string) error
	log       logrus.FieldLogger

	state orchestrator.State

	// Presentation
	theme    *styles.Theme
	md       *components.Markdown
	keys     KeyMap
	help     help.Model
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// File picker overlay
	picker     filepicker.Model
	pathInput  textinput.Model
	pickerOpen bool
	pathEntry  bool

	focus     focusArea
	piiCursor int
	notice    string
	backendUp *bool

	width  int
	height int
	ready  bool
}

// New creates the chat model in the initial state.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	md := opts.Markdown
	if md == nil {
		md = components.NewMarkdown(theme.GlamourStyle())
	}
	uploads := opts.Upload
	if uploads == nil {
		uploads = upload.NewControl(0, nil)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	start := opts.StartDir
	if start == "" {
		if wd, err := os.Getwd(); err == nil {
			start = wd
		} else {
			start = "."
		}
	}
	fp := filepicker.New()
	fp.CurrentDirectory = start
	fp.AllowedTypes = uploads.AllowedExtensions
	fp.ShowHidden = false
	fp.Height = 12

	pi := textinput.New()
	pi.Prompt = "Path: "
	pi.Placeholder = "/path/to/image.png"

	return Model{
		orch:      opts.Orchestrator,
		api:       opts.Backend,
		health:    opts.Health,
		uploads:   uploads,
		timeout:   opts.Timeout,
		saveDir:   opts.SaveDir,
		clipboard: copyFn,
		log:       log,
		theme:     theme,
		md:        md,
		keys:      keys,
		help:      help.New(),
		input:     ta,
		viewport:  vp,
		spinner:   sp,
		picker:    fp,
		pathInput: pi,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the spinner and the health check.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.health != nil {
		cmds = append(cmds, m.checkHealth())
	}
	return tea.Batch(cmds...)
}

// State returns the current conversation state.
func (m Model) State() orchestrator.State {
	return m.state
}

// Notice returns the transient status line message.
func (m Model) Notice() string {
	return m.notice
}

// =============================================================================
// COMMANDS
// =============================================================================

// execute runs req off the update loop and reports its completion as an
// EventMsg.
func (m Model) execute(req orchestrator.Request) tea.Cmd {
	api, timeout, log := m.api, m.timeout, m.log
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		started := time.Now()
		ev := orchestrator.Execute(ctx, api, req)
		entry := log.WithFields(logrus.Fields{
			"request":  requestName(req),
			"epoch":    req.IssuedIn(),
			"duration": time.Since(started).Round(time.Millisecond),
		})
		if err := eventErr(ev); err != nil {
			entry.WithError(err).Warn("request failed")
		} else {
			entry.Debug("request finished")
		}
		return EventMsg{Event: ev}
	}
}

func (m Model) checkHealth() tea.Cmd {
	check := m.health
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return HealthMsg{Err: check(ctx)}
	}
}

func (m *Model) copyLastReply() tea.Cmd {
	msg, ok := m.state.Transcript.LastAssistant()
	if !ok || msg.Text == "" {
		m.notice = "No response to copy"
		return nil
	}
	write, text := m.clipboard, msg.Text
	return func() tea.Msg {
		return copiedMsg{Chars: len([]rune(text)), Err: write(text)}
	}
}

func requestName(req orchestrator.Request) string {
	switch req.(type) {
	case orchestrator.ChatRequest:
		return "chat"
	case orchestrator.DetectRequest:
		return "detect"
	case orchestrator.RedactRequest:
		return "redact"
	}
	return "unknown"
}

func eventErr(ev orchestrator.Event) error {
	switch ev := ev.(type) {
	case orchestrator.ChatFailed:
		return ev.Err
	case orchestrator.DetectFailed:
		return ev.Err
	case orchestrator.RedactFailed:
		return ev.Err
	}
	return nil
}
