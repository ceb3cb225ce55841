// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/config"
	"github.com/FuriousFire05/secure-ai-chat/internal/fakebackend"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/orchestrator"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// =============================================================================
// HELPERS
// =============================================================================

func writePNG(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "card.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path, buf.Bytes()
}

func startFake(t *testing.T, opts fakebackend.Options) (*fakebackend.Server, string) {
	t.Helper()
	fake := fakebackend.New(opts)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return fake, srv.URL + fakebackend.APIPrefix
}

// execute runs the root command with args against a throwaway config file.
func execute(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(config.ResetGlobalForTesting)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	full := append([]string{"--config", cfgPath}, args...)
	if backendURL != "" {
		full = append([]string{"--backend", backendURL}, full...)
	}

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(full)
	err := root.Execute()
	return out.String(), err
}

func detected() []model.PiiItem {
	return []model.PiiItem{
		{ID: model.NumberID(3), Type: "email", Text: "a@b.c"},
		{ID: model.StringID("x-7"), Type: "phone", Text: "555"},
		{ID: model.NumberID(12), Type: "name", Text: "Jane"},
	}
}

// =============================================================================
// ITEM SELECTION
// =============================================================================

func TestChooseItems(t *testing.T) {
	tests := []struct {
		name    string
		opts    redactOptions
		policy  model.SelectionPolicy
		want    []string
		wantErr string
	}{
		{name: "policy all", policy: model.RedactAll, want: []string{"3", `"x-7"`, "12"}},
		{name: "policy none", policy: model.RedactNone, want: nil},
		{name: "all flag", opts: redactOptions{all: true}, policy: model.RedactNone, want: []string{"3", `"x-7"`, "12"}},
		{name: "none flag", opts: redactOptions{none: true}, policy: model.RedactAll, want: nil},
		{name: "explicit ids", opts: redactOptions{selectIDs: []string{"12", " x-7"}}, policy: model.RedactAll, want: []string{`"x-7"`, "12"}},
		{name: "duplicate id stays selected", opts: redactOptions{selectIDs: []string{"3", "3"}}, policy: model.RedactNone, want: []string{"3"}},
		{name: "unknown id", opts: redactOptions{selectIDs: []string{"99"}}, policy: model.RedactAll, wantErr: "no detected item with id 99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := chooseItems(detected(), tt.opts, tt.policy)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			var got []string
			for _, id := range sel.SelectedIDs() {
				got = append(got, id.Raw())
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 3, sel.Len())
		})
	}
}

// =============================================================================
// PRINTER
// =============================================================================

func TestPrinterItems(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "dark", 0)

	items := detected()
	items[0].Selected = true
	p.items(items)
	out := buf.String()

	assert.Contains(t, out, "Detected PII (3)")
	assert.Contains(t, out, "[x] 3")
	assert.Contains(t, out, "[ ] x-7")
	assert.Contains(t, out, "Jane")

	buf.Reset()
	p.items(nil)
	assert.Contains(t, buf.String(), "Detected PII (0)")
	assert.Contains(t, buf.String(), "none")
}

func TestPrinterRepliesArePlainWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, "dark", 0)
	assert.Nil(t, p.md)

	p.reply("**bold** reply")
	assert.Equal(t, "**bold** reply\n", buf.String())

	buf.Reset()
	p.detectedText("line one\nline two\n")
	assert.Contains(t, buf.String(), "Detected text")
	assert.Contains(t, buf.String(), "  line two\n")

	buf.Reset()
	p.detectedText("   ")
	assert.Empty(t, buf.String())
}

// =============================================================================
// REPL
// =============================================================================

func newTestREPL(t *testing.T, opts fakebackend.Options) (*repl, *fakebackend.Server, *bytes.Buffer) {
	t.Helper()
	fake, url := startFake(t, opts)
	client := backend.NewClient(&backend.ClientConfig{BaseURL: url, Timeout: 5 * time.Second})
	session := orchestrator.NewSession(orchestrator.New(orchestrator.Config{}), client)

	var buf bytes.Buffer
	return newREPL(session, upload.NewControl(0, nil), newPrinter(&buf, "dark", 0)), fake, &buf
}

func TestREPLTextMessage(t *testing.T) {
	r, fake, out := newTestREPL(t, fakebackend.Options{})
	ctx := context.Background()

	assert.False(t, r.handle(ctx, "  hello there "))

	req, ok := fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "  hello there ", req.Message)

	assert.Contains(t, out.String(), "You said:   hello there ")
	assert.Equal(t, 2, r.session.State().Transcript.Len())
	assert.Equal(t, 2, r.shown)
}

func TestREPLChatFailurePrintsDiagnostic(t *testing.T) {
	r, _, out := newTestREPL(t, fakebackend.Options{FailChat: true})
	r.handle(context.Background(), "hi")
	assert.Contains(t, out.String(), orchestrator.ChatErrorText)
}

func TestREPLImageToggleRedactSave(t *testing.T) {
	r, fake, out := newTestREPL(t, fakebackend.Options{})
	ctx := context.Background()
	dir := t.TempDir()
	path, data := writePNG(t, dir)

	r.handle(ctx, "/image "+path)
	assert.Contains(t, out.String(), "Detected PII (3)")
	assert.Equal(t, 3, r.session.State().Selection.SelectedCount())

	out.Reset()
	r.handle(ctx, "/toggle 7 99")
	assert.Contains(t, out.String(), "no detected item with id 99")
	assert.Equal(t, 2, r.session.State().Selection.SelectedCount())

	out.Reset()
	r.handle(ctx, "/redact what is this?")
	req, ok := fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "[3,12]", req.SelectedIDs)
	assert.Equal(t, "what is this?", req.Message)
	assert.Contains(t, out.String(), "what is this? (2 item(s) redacted)")
	assert.Contains(t, out.String(), "redacted image received")

	target := filepath.Join(dir, "out.png")
	r.handle(ctx, "/save "+target)
	saved, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, data, saved)
}

func TestREPLAllAndNone(t *testing.T) {
	r, _, _ := newTestREPL(t, fakebackend.Options{})
	ctx := context.Background()
	path, _ := writePNG(t, t.TempDir())

	r.handle(ctx, "/image "+path)
	r.handle(ctx, "/none")
	assert.Equal(t, 0, r.session.State().Selection.SelectedCount())
	r.handle(ctx, "/all")
	assert.Equal(t, 3, r.session.State().Selection.SelectedCount())
}

func TestREPLDetectFailureIsDismissed(t *testing.T) {
	r, _, out := newTestREPL(t, fakebackend.Options{FailDetect: true})
	path, _ := writePNG(t, t.TempDir())

	r.handle(context.Background(), "/image "+path)
	assert.Contains(t, out.String(), orchestrator.DetectFailedAlert)
	assert.NotContains(t, out.String(), "Detected PII")
	assert.False(t, r.session.State().HasAlert())
}

func TestREPLRejectsMissingFile(t *testing.T) {
	r, fake, out := newTestREPL(t, fakebackend.Options{})

	r.handle(context.Background(), "/image "+filepath.Join(t.TempDir(), "missing.png"))
	assert.False(t, r.session.State().Upload.HasFile())
	assert.False(t, r.session.State().HasAlert())
	assert.Contains(t, out.String(), orchestrator.FileRejectedAlert)
	assert.Empty(t, fake.Requests())
}

func TestREPLRejectsOversizedFile(t *testing.T) {
	r, fake, out := newTestREPL(t, fakebackend.Options{})
	r.uploads = upload.NewControl(16, nil)
	path, _ := writePNG(t, t.TempDir())

	r.handle(context.Background(), "/image "+path)
	assert.Contains(t, out.String(), "File too large")
	assert.Empty(t, fake.Requests())
}

func TestREPLSaveWithoutRedactedImage(t *testing.T) {
	r, _, out := newTestREPL(t, fakebackend.Options{})
	r.handle(context.Background(), "/save "+filepath.Join(t.TempDir(), "x.png"))
	assert.Contains(t, out.String(), "no redacted image yet")
}

func TestREPLClearAndCommands(t *testing.T) {
	r, _, out := newTestREPL(t, fakebackend.Options{})
	ctx := context.Background()

	r.handle(ctx, "hi")
	require.Equal(t, 2, r.shown)

	r.handle(ctx, "/clear")
	assert.True(t, r.session.State().Transcript.IsEmpty())
	assert.Contains(t, out.String(), "conversation cleared")

	r.handle(ctx, "again")
	assert.Equal(t, 2, r.shown)

	out.Reset()
	assert.False(t, r.handle(ctx, "/bogus"))
	assert.Contains(t, out.String(), "unknown command /bogus")

	out.Reset()
	r.handle(ctx, "/help")
	assert.Contains(t, out.String(), "/redact [text]")

	assert.True(t, r.handle(ctx, "/quit"))
	assert.True(t, r.handle(ctx, " /exit"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a.png"), expandHome("~/a.png"))
	assert.Equal(t, "/tmp/a.png", expandHome("/tmp/a.png"))
	assert.Equal(t, "~user/a.png", expandHome("~user/a.png"))
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestAskCommand(t *testing.T) {
	fake, url := startFake(t, fakebackend.Options{})

	out, err := execute(t, url, "ask", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "You said: hello world\n", out)

	req, ok := fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, backend.PathChat, req.Path)
}

func TestAskCommandFailure(t *testing.T) {
	_, url := startFake(t, fakebackend.Options{FailChat: true})

	_, err := execute(t, url, "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat:")
}

func TestDetectCommand(t *testing.T) {
	_, url := startFake(t, fakebackend.Options{Text: "Jane Doe\njane.doe@example.com"})
	path, _ := writePNG(t, t.TempDir())

	out, err := execute(t, url, "detect", path, "--text")
	require.NoError(t, err)
	assert.Contains(t, out, "Detected PII (3)")
	assert.Contains(t, out, "jane.doe@example.com")
	assert.Contains(t, out, "Detected text")

	out, err = execute(t, url, "detect", path, "--json")
	require.NoError(t, err)
	var resp backend.DetectResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Items, 3)
}

func TestDetectCommandRejectsLargeFile(t *testing.T) {
	_, url := startFake(t, fakebackend.Options{})
	path := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0}, 6<<20), 0o644))

	_, err := execute(t, url, "detect", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, upload.ErrFileTooLarge)
}

func TestRedactCommand(t *testing.T) {
	fake, url := startFake(t, fakebackend.Options{})
	dir := t.TempDir()
	path, data := writePNG(t, dir)
	target := filepath.Join(dir, "redacted.png")

	out, err := execute(t, url, "redact", path, "--select", "3,12", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, orchestrator.ImagePlaceholder+" (2 item(s) redacted)")
	assert.Contains(t, out, "wrote "+target)

	req, ok := fake.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "[3,12]", req.SelectedIDs)

	saved, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, data, saved)
}

func TestRedactCommandNone(t *testing.T) {
	fake, url := startFake(t, fakebackend.Options{OmitImage: true})
	dir := t.TempDir()
	path, _ := writePNG(t, dir)
	target := filepath.Join(dir, "redacted.png")

	out, err := execute(t, url, "redact", path, "--none", "-m", "layout?", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "layout? (0 item(s) redacted)")
	assert.Contains(t, out, "not written")
	assert.NoFileExists(t, target)

	req, _ := fake.LastRequest()
	assert.Equal(t, "[]", req.SelectedIDs)
}

func TestRedactCommandFlagsAreExclusive(t *testing.T) {
	_, url := startFake(t, fakebackend.Options{})
	path, _ := writePNG(t, t.TempDir())

	_, err := execute(t, url, "redact", path, "--all", "--none")
	require.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	_, url := startFake(t, fakebackend.Options{})
	out, err := execute(t, url, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "is healthy")

	_, err = execute(t, "http://127.0.0.1:1/api", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestInvalidBackendFlag(t *testing.T) {
	_, err := execute(t, "ftp://example.com", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.url")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	run := func(args ...string) (string, error) {
		t.Cleanup(config.ResetGlobalForTesting)
		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"--config", cfgPath}, args...))
		err := root.Execute()
		return out.String(), err
	}

	out, err := run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", out)

	out, err = run("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+cfgPath)
	assert.FileExists(t, cfgPath)

	_, err = run("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run("config", "init", "--force")
	require.NoError(t, err)

	out, err = run("--backend", "http://10.0.0.5:8000/api", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "http://10.0.0.5:8000/api")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "secure-ai-chat version "+Version))
	assert.Contains(t, out, "go:")
}
