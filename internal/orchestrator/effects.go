// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

// Backend is the subset of the service client the orchestrator's requests need.
// *backend.Client satisfies it.
type Backend interface {
	Chat(ctx context.Context, message string) (*backend.ChatResponse, error)
	Detect(ctx context.Context, file upload.File) (*backend.DetectResponse, error)
	RedactAndChat(ctx context.Context, file upload.File, message string, selected []model.ItemID) (*backend.RedactResponse, error)
}

// Execute runs req against api and returns its completion event. It never
// returns nil for a known request: every failure becomes a *Failed event.
func Execute(ctx context.Context, api Backend, req Request) Event {
	switch req := req.(type) {
	case ChatRequest:
		resp, err := api.Chat(ctx, req.Message)
		if err != nil {
			return ChatFailed{Epoch: req.Epoch, Err: err}
		}
		return ChatSucceeded{Epoch: req.Epoch, Reply: resp.Reply}

	case DetectRequest:
		resp, err := api.Detect(ctx, req.File)
		if err != nil {
			return DetectFailed{Epoch: req.Epoch, Err: err}
		}
		return DetectSucceeded{Epoch: req.Epoch, Items: resp.Items, Text: resp.Text}

	case RedactRequest:
		resp, err := api.RedactAndChat(ctx, req.File, req.Message, req.SelectedIDs)
		if err != nil {
			return RedactFailed{Epoch: req.Epoch, Err: err}
		}
		return RedactSucceeded{
			Epoch:               req.Epoch,
			Reply:               resp.Reply,
			RedactedImageBase64: resp.RedactedImageBase64,
		}
	}
	return nil
}

// Session couples a State with an Orchestrator and runs requests synchronously.
// It is meant for line-oriented front ends and tests; the TUI executes requests
// asynchronously instead.
type Session struct {
	orch  *Orchestrator
	api   Backend
	state State
}

// NewSession creates a session in the initial state.
func NewSession(orch *Orchestrator, api Backend) *Session {
	return &Session{orch: orch, api: api}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Dispatch applies ev, then executes every issued request and applies its
// completion, in order.
func (s *Session) Dispatch(ctx context.Context, ev Event) State {
	queue := []Event{ev}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		var reqs []Request
		s.state, reqs = s.orch.Apply(s.state, next)
		for _, req := range reqs {
			if done := Execute(ctx, s.api, req); done != nil {
				queue = append(queue, done)
			}
		}
	}
	return s.state
}
