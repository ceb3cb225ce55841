// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fakebackend

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FuriousFire05/secure-ai-chat/internal/backend"
	"github.com/FuriousFire05/secure-ai-chat/internal/model"
)

// defaultRedactMessage is what the service substitutes for an empty message.
const defaultRedactMessage = "Analyze this redacted image."

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backend.HealthResponse{Status: "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	message := r.FormValue(backend.FieldMessage)
	opts := s.record(Request{
		Path:      backend.PathChat,
		RequestID: r.Header.Get(backend.RequestIDHeader),
		Message:   message,
	})
	pause(opts.Delay)

	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if opts.FailChat {
		writeError(w, http.StatusInternalServerError, "Chat failed: simulated failure")
		return
	}

	reply := opts.ChatReply
	if reply == "" {
		reply = "You said: " + message
	}
	writeJSON(w, http.StatusOK, backend.ChatResponse{Reply: reply})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUpload(r)
	req := Request{
		Path:      backend.PathDetect,
		RequestID: r.Header.Get(backend.RequestIDHeader),
		FileName:  name,
		FileSize:  len(data),
	}
	opts := s.record(req)
	pause(opts.Delay)

	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	if opts.FailDetect {
		writeError(w, http.StatusInternalServerError, "PII detection failed: simulated failure")
		return
	}

	items := opts.Items
	if items == nil {
		items = DefaultItems()
	}
	writeJSON(w, http.StatusOK, backend.DetectResponse{
		Items: items,
		Text:  opts.Text,
		Count: len(items),
	})
}

func (s *Server) handleRedactAndChat(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUpload(r)
	message := r.FormValue(backend.FieldMessage)
	rawIDs := r.FormValue(backend.FieldSelectedIDs)
	opts := s.record(Request{
		Path:        backend.PathRedactAndChat,
		RequestID:   r.Header.Get(backend.RequestIDHeader),
		Message:     message,
		FileName:    name,
		FileSize:    len(data),
		SelectedIDs: rawIDs,
	})
	pause(opts.Delay)

	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	if opts.FailRedact {
		writeError(w, http.StatusInternalServerError, "Redaction or AI call failed: simulated failure")
		return
	}

	// Malformed ids are treated as an empty selection.
	var ids []model.ItemID
	if rawIDs != "" {
		if err := json.Unmarshal([]byte(rawIDs), &ids); err != nil {
			ids = nil
		}
	}
	if message == "" {
		message = defaultRedactMessage
	}

	var resp backend.RedactResponse
	if !opts.OmitImage {
		resp.RedactedImageBase64 = opts.RedactedImage
		if resp.RedactedImageBase64 == "" {
			resp.RedactedImageBase64 = base64.StdEncoding.EncodeToString(data)
		}
	}
	if !opts.OmitReply {
		resp.Reply = opts.RedactReply
		if resp.Reply == "" {
			resp.Reply = fmt.Sprintf("%s (%d item(s) redacted)", message, len(ids))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// HELPERS
// ============================================================================

func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(MaxUploadMemory); err != nil {
		return nil, "", err
	}
	f, header, err := r.FormFile(backend.FieldFile)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, header.Filename, err
	}
	return data, header.Filename, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, backend.ErrorResponse{Error: msg})
}

func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
