// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/FuriousFire05/secure-ai-chat/internal/config"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/chat"
	"github.com/FuriousFire05/secure-ai-chat/internal/ui/styles"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

const replHelp = `Commands:
  /image <path>     upload an image and detect PII
  /items            list detected PII
  /toggle <id>...   toggle items by id
  /all, /none       redact every item / no item
  /redact [text]    send the redacted image (with text, or the placeholder)
  /save [path]      write the redacted image (default redacted.png)
  /clear            reset the conversation
  /help             show this help
  /quit             exit
Any other line is sent as a text-only message.`

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat session",
		Long: `Start a line-mode chat session against the PII service.

` + replHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, a)
		},
	}
}

// =============================================================================
// REPL
// =============================================================================

// repl drives an orchestrator.Session from text commands and prints what
// changed after each one.
type repl struct {
	session *orchestrator.Session
	uploads *upload.Control
	out     *printer
	shown   int
}

func newREPL(session *orchestrator.Session, uploads *upload.Control, out *printer) *repl {
	return &repl{session: session, uploads: uploads, out: out}
}

// handle runs one input line. It reports whether the session should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		r.dispatch(ctx, orchestrator.InputChanged{Text: line}, orchestrator.SendText{})
		return false
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/h":
		r.out.printf("%s\n", replHelp)

	case "/image", "/i":
		if arg == "" {
			r.out.warn("usage: /image <path>")
			return false
		}
		f, err := r.uploads.Open(expandHome(arg))
		if err != nil {
			r.dispatch(ctx, orchestrator.FileRejected{Err: err})
			return false
		}
		r.out.ok("%s", f.Describe())
		if !r.dispatch(ctx, orchestrator.FileSelected{File: f}) {
			r.out.items(r.session.State().Selection.Items())
		}

	case "/items":
		r.out.items(r.session.State().Selection.Items())
		r.out.detectedText(r.session.State().DetectedText)

	case "/toggle", "/t":
		if arg == "" {
			r.out.warn("usage: /toggle <id>...")
			return false
		}
		for _, raw := range strings.Fields(arg) {
			id := model.ParseItemID(raw)
			if _, ok := r.session.State().Selection.Lookup(id); !ok {
				r.out.warn("no detected item with id %s", raw)
				continue
			}
			r.dispatch(ctx, orchestrator.ToggleItem{ID: id})
		}
		r.out.items(r.session.State().Selection.Items())

	case "/all":
		r.dispatch(ctx, orchestrator.ToggleAll{Value: true})
		r.out.items(r.session.State().Selection.Items())

	case "/none":
		r.dispatch(ctx, orchestrator.ToggleAll{Value: false})
		r.out.items(r.session.State().Selection.Items())

	case "/redact", "/r":
		r.dispatch(ctx, orchestrator.InputChanged{Text: arg}, orchestrator.RedactAndSend{})
		if r.session.State().Upload.HasRedacted() {
			r.out.ok("redacted image received; /save writes it to disk")
		}

	case "/save":
		r.save(arg)

	case "/clear", "/c":
		r.dispatch(ctx, orchestrator.Clear{})
		r.out.ok("conversation cleared")

	default:
		r.out.warn("unknown command %s (try /help)", name)
	}
	return false
}

// dispatch applies events in order, then prints new messages and any alert.
// Alerts are shown inline and dismissed right away; the result reports
// whether one was raised.
func (r *repl) dispatch(ctx context.Context, events ...orchestrator.Event) bool {
	for _, ev := range events {
		r.session.Dispatch(ctx, ev)
	}

	st := r.session.State()
	msgs := st.Transcript.Messages()
	if len(msgs) < r.shown {
		r.shown = 0
	}
	for _, msg := range msgs[r.shown:] {
		r.out.message(msg)
	}
	r.shown = len(msgs)

	if !st.HasAlert() {
		return false
	}
	r.out.warn("%s", st.Alert)
	r.session.Dispatch(ctx, orchestrator.AlertDismissed{})
	return true
}

func (r *repl) save(path string) {
	if path == "" {
		path = chat.RedactedFileName
	}
	data, err := r.session.State().Upload.RedactedPNG()
	if err != nil {
		if errors.Is(err, model.ErrNoRedactedImage) {
			r.out.warn("no redacted image yet; use /redact first")
		} else {
			r.out.warn("redacted image payload is not valid base64")
		}
		return
	}
	if err := util.WriteFileAtomic(expandHome(path), data, 0o644, 0o755); err != nil {
		r.out.warn("save failed: %v", err)
		return
	}
	r.out.ok("saved %s", path)
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

// =============================================================================
// LINE EDITING
// =============================================================================

func runREPL(cmd *cobra.Command, a *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	out := newPrinter(cmd.OutOrStdout(), theme.GlamourStyle(), a.cfg.UI.WordWrap)
	session := orchestrator.NewSession(a.orchestrator(), a.client(a.log))
	r := newREPL(session, a.uploads(), out)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := ""
	if dir, err := config.Dir(); err == nil {
		historyFile = filepath.Join(dir, "chat_history")
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	out.printf("secure-ai-chat %s · %s\n", Version, a.cfg.Backend.URL)
	out.printf("Type /help for commands.\n\n")

	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		if r.handle(ctx, input) {
			break
		}
	}

	if historyFile != "" {
		saveHistory(line, historyFile)
	}
	return nil
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
