// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"errors"
	"strings"
	"time"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// Fixed user-visible texts.
const (
	ChatErrorText     = "Error: failed to contact AI."
	RedactErrorText   = "Error: redaction or AI call failed."
	ImagePlaceholder  = "(image message)"
	NoReplyText       = "No response from AI."
	DetectFailedAlert = "PII detection failed."
	NoFileAlert       = "Upload an image first."
	FileRejectedAlert = "File could not be opened."
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the policies applied by an Orchestrator.
type Config struct {
	// Policy decides the initial selection of freshly detected items.
	// Nil means model.RedactAll.
	Policy model.SelectionPolicy

	// DiscardStale drops the effects of completions issued before the last
	// Clear. Loading flags are reset either way.
	DiscardStale bool

	// MaxBytes rejects FileSelected events for larger files. Zero means
	// upload.DefaultMaxBytes.
	MaxBytes int64

	// Clock returns the time used for message timestamps. Nil means time.Now.
	Clock func() time.Time

	// TimestampLayout formats message timestamps. Empty means model.DefaultTimestampLayout.
	TimestampLayout string
}

// Orchestrator applies events to State. It holds no state of its own and is
// safe for concurrent use.
type Orchestrator struct {
	policy       model.SelectionPolicy
	discardStale bool
	maxBytes     int64
	clock        func() time.Time
	layout       string
}

// New creates an orchestrator, filling zero fields of cfg with defaults.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		policy:       cfg.Policy,
		discardStale: cfg.DiscardStale,
		maxBytes:     cfg.MaxBytes,
		clock:        cfg.Clock,
		layout:       cfg.TimestampLayout,
	}
	if o.policy == nil {
		o.policy = model.RedactAll
	}
	if o.maxBytes <= 0 {
		o.maxBytes = upload.DefaultMaxBytes
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.layout == "" {
		o.layout = model.DefaultTimestampLayout
	}
	return o
}

// DiscardsStale reports whether stale completions are dropped.
func (o *Orchestrator) DiscardsStale() bool {
	return o.discardStale
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Apply returns the state after ev and the requests the caller must execute.
// s is not modified.
func (o *Orchestrator) Apply(s State, ev Event) (State, []Request) {
	switch ev := ev.(type) {
	case InputChanged:
		s.Input = ev.Text
		return s, nil

	case SendText:
		return o.sendText(s)

	case FileSelected:
		return o.selectFile(s, ev.File)

	case FileRejected:
		s.Alert = rejectionMessage(ev.Err)
		return s, nil

	case ToggleAll:
		s.Selection = s.Selection.SetAllSelected(ev.Value)
		return s, nil

	case ToggleItem:
		s.Selection = s.Selection.Toggle(ev.ID)
		return s, nil

	case RedactAndSend:
		return o.redactAndSend(s)

	case Clear:
		return resetConversation(s), nil

	case AlertDismissed:
		s.Alert = ""
		return s, nil

	case ChatSucceeded:
		if !o.stale(s, ev.Epoch) {
			s = o.appendAssistant(s, ev.Reply)
		}
		return finishChat(s), nil

	case ChatFailed:
		if !o.stale(s, ev.Epoch) {
			s = o.appendAssistant(s, ChatErrorText)
		}
		return finishChat(s), nil

	case DetectSucceeded:
		if !o.stale(s, ev.Epoch) {
			s.Selection = s.Selection.ReplaceAll(ev.Items, o.policy)
			s.DetectedText = ev.Text
		}
		return finishDetect(s), nil

	case DetectFailed:
		if !o.stale(s, ev.Epoch) {
			s.Alert = DetectFailedAlert
		}
		return finishDetect(s), nil

	case RedactSucceeded:
		if !o.stale(s, ev.Epoch) {
			if ev.RedactedImageBase64 != "" {
				s.Upload = s.Upload.WithRedacted(ev.RedactedImageBase64)
			}
			reply := ev.Reply
			if reply == "" {
				reply = NoReplyText
			}
			s = o.appendAssistant(s, reply)
		}
		return finishChat(s), nil

	case RedactFailed:
		if !o.stale(s, ev.Epoch) {
			s = o.appendAssistant(s, RedactErrorText)
		}
		return finishChat(s), nil
	}
	return s, nil
}

// ApplyAll folds events over s, collecting every request in order.
func (o *Orchestrator) ApplyAll(s State, events ...Event) (State, []Request) {
	var all []Request
	for _, ev := range events {
		var reqs []Request
		s, reqs = o.Apply(s, ev)
		all = append(all, reqs...)
	}
	return s, all
}

func (o *Orchestrator) sendText(s State) (State, []Request) {
	if strings.TrimSpace(s.Input) == "" {
		return s, nil
	}
	text := s.Input
	s = o.beginChat(s, model.NewUserMessage(text, o.clock(), o.layout))
	return s, []Request{ChatRequest{Epoch: s.Epoch, Message: text}}
}

func (o *Orchestrator) selectFile(s State, f upload.File) (State, []Request) {
	if f.Size > o.maxBytes {
		s.Alert = (&upload.SizeError{Path: f.Path, Size: f.Size, Max: o.maxBytes}).UserMessage()
		return s, nil
	}
	s.Upload = s.Upload.WithFile(f)
	s.Selection = model.Selection{}
	s.DetectedText = ""
	s.Loading.Detect = true
	return s, []Request{DetectRequest{Epoch: s.Epoch, File: f}}
}

func (o *Orchestrator) redactAndSend(s State) (State, []Request) {
	if !s.Upload.HasFile() {
		s.Alert = NoFileAlert
		return s, nil
	}
	ids := s.Selection.SelectedIDs()
	text := s.Input
	if strings.TrimSpace(text) == "" {
		text = ImagePlaceholder
	}
	msg := model.NewUserMessage(text, o.clock(), o.layout).WithImage(s.Upload.PreviewURL)
	s = o.beginChat(s, msg)
	return s, []Request{RedactRequest{
		Epoch:       s.Epoch,
		File:        *s.Upload.File,
		Message:     text,
		SelectedIDs: ids,
	}}
}

// beginChat is the immediate half of a send: the user message is appended and
// the input cleared before any outcome is known.
func (o *Orchestrator) beginChat(s State, msg model.ChatMessage) State {
	s.Transcript = s.Transcript.Append(msg)
	s.Input = ""
	s.Loading.Chat = true
	return s
}

func (o *Orchestrator) appendAssistant(s State, text string) State {
	s.Transcript = s.Transcript.Append(model.NewAssistantMessage(text, o.clock(), o.layout))
	return s
}

func (o *Orchestrator) stale(s State, epoch uint64) bool {
	return o.discardStale && epoch != s.Epoch
}

// finishChat always runs when a chat-flow request completes.
func finishChat(s State) State {
	s.Loading.Chat = false
	return s
}

// finishDetect always runs when a detect request completes.
func finishDetect(s State) State {
	s.Loading.Detect = false
	return s
}

// resetConversation resets conversation content. Loading flags and the alert survive:
// outstanding requests still complete.
func resetConversation(s State) State {
	return State{
		Loading: s.Loading,
		Alert:   s.Alert,
		Epoch:   s.Epoch + 1,
	}
}

type userMessager interface {
	UserMessage() string
}

func rejectionMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if err != nil {
		return FileRejectedAlert + " " + err.Error()
	}
	return FileRejectedAlert
}
