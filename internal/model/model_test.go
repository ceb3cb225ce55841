// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
)

func sampleItems() []PiiItem {
	return []PiiItem{
		{ID: StringID("1"), Text: "John Doe", Type: "NAME"},
		{ID: StringID("2"), Text: "jd@example.com", Type: "EMAIL"},
		{ID: NumberID(7), Text: "555-0100", Type: "PHONE"},
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendDoesNotAlias(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	base := NewTranscript(NewUserMessage("first", now, ""))

	a := base.Append(NewAssistantMessage("a", now, ""))
	b := base.Append(NewAssistantMessage("b", now, ""))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "a", a.At(1).Text)
	assert.Equal(t, "b", b.At(1).Text)
}

func TestTranscript_LastAssistant(t *testing.T) {
	now := time.Now()
	var tr Transcript
	_, ok := tr.LastAssistant()
	assert.False(t, ok)

	tr = tr.Append(NewAssistantMessage("reply", now, "")).Append(NewUserMessage("again", now, ""))
	msg, ok := tr.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "reply", msg.Text)

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, RoleUser, last.Role)
}

func TestNewMessage_TimestampFormattedOnce(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	msg := NewUserMessage("hi", now, "")
	assert.Equal(t, "15:04:05", msg.Timestamp)
	assert.NotEmpty(t, msg.ID)

	custom := NewAssistantMessage("hi", now, "Jan 2 15:04")
	assert.Equal(t, "Jan 2 15:04", custom.Timestamp)
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "tool", Role("tool").DisplayName())
}

// =============================================================================
// ITEM ID TESTS
// =============================================================================

func TestItemID_RoundTripsJSONType(t *testing.T) {
	var items []PiiItem
	err := json.Unmarshal([]byte(`[{"id":3,"text":"a","type":"name"},{"id":"x-1","text":"b","type":"email"}]`), &items)
	require.NoError(t, err)

	assert.Equal(t, NumberID(3), items[0].ID)
	assert.Equal(t, StringID("x-1"), items[1].ID)
	assert.Equal(t, "x-1", items[1].ID.String())

	out, err := json.Marshal([]ItemID{items[0].ID, items[1].ID})
	require.NoError(t, err)
	assert.JSONEq(t, `[3,"x-1"]`, string(out))
}

func TestItemID_AcceptsAnyJSONValue(t *testing.T) {
	var items []PiiItem
	err := json.Unmarshal([]byte(`[
		{"id":null,"text":"a","type":"name"},
		{"id":true,"text":"b","type":"email"},
		{"id":{"page": 1, "n": 2},"text":"c","type":"phone"},
		{"text":"d","type":"name"}
	]`), &items)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.True(t, items[0].ID.IsZero())
	assert.Equal(t, "true", items[1].ID.String())
	assert.Equal(t, `{"page":1,"n":2}`, items[2].ID.Raw())
	assert.True(t, items[3].ID.IsZero())

	sel := Selection{}.ReplaceAll(items, RedactNone).Toggle(items[1].ID).Toggle(items[2].ID)
	out, err := json.Marshal(sel.SelectedIDs())
	require.NoError(t, err)
	assert.JSONEq(t, `[true,{"page":1,"n":2}]`, string(out))

	// Null ids match each other, so they toggle together.
	sel = sel.Toggle(ItemID{})
	out, err = json.Marshal(sel.SelectedIDs())
	require.NoError(t, err)
	assert.JSONEq(t, `[null,true,{"page":1,"n":2},null]`, string(out))
}

func TestParseItemID(t *testing.T) {
	assert.Equal(t, NumberID(12), ParseItemID("12"))
	assert.Equal(t, StringID("abc"), ParseItemID("abc"))
	assert.True(t, ItemID{}.IsZero())
}

// =============================================================================
// SELECTION TESTS
// =============================================================================

func TestSelection_ReplaceAllDefaultsSelected(t *testing.T) {
	sel := Selection{}.ReplaceAll(sampleItems(), RedactAll)

	require.Equal(t, 3, sel.Len())
	for _, it := range sel.Items() {
		assert.True(t, it.Selected, "item %s should default to selected", it.ID)
	}
}

func TestSelection_ReplaceAllPolicy(t *testing.T) {
	sel := Selection{}.ReplaceAll(sampleItems(), RedactNone)
	assert.Equal(t, 0, sel.SelectedCount())

	onlyNames := func(it PiiItem) bool { return it.Type == "NAME" }
	sel = sel.ReplaceAll(sampleItems(), onlyNames)
	assert.Equal(t, []ItemID{StringID("1")}, sel.SelectedIDs())

	sel = sel.ReplaceAll(sampleItems(), nil)
	assert.Equal(t, 3, sel.SelectedCount(), "nil policy means redact all")
}

func TestSelection_ReplaceAllShrinks(t *testing.T) {
	sel := Selection{}.ReplaceAll(sampleItems(), RedactAll)
	sel = sel.ReplaceAll(sampleItems()[:1], RedactAll)
	assert.Equal(t, 1, sel.Len())
}

func TestSelection_ToggleIsInvolution(t *testing.T) {
	start := Selection{}.ReplaceAll(sampleItems(), RedactAll).Toggle(NumberID(7))

	for _, id := range []ItemID{StringID("1"), StringID("2"), NumberID(7), StringID("missing")} {
		twice := start.Toggle(id).Toggle(id)
		assert.Equal(t, start.Items(), twice.Items(), "toggle twice on %s", id)
	}
}

func TestSelection_ToggleUnknownIsNoop(t *testing.T) {
	start := Selection{}.ReplaceAll(sampleItems(), RedactAll)
	assert.Equal(t, start.Items(), start.Toggle(StringID("nope")).Items())
}

func TestSelection_ToggleDoesNotMutateReceiver(t *testing.T) {
	start := Selection{}.ReplaceAll(sampleItems(), RedactAll)
	_ = start.Toggle(StringID("1"))
	assert.Equal(t, 3, start.SelectedCount())
}

func TestSelection_ToggleMatchesNumberAndStringSeparately(t *testing.T) {
	items := []PiiItem{{ID: NumberID(1)}, {ID: StringID("1")}}
	sel := Selection{}.ReplaceAll(items, RedactAll).Toggle(NumberID(1))
	assert.Equal(t, []ItemID{StringID("1")}, sel.SelectedIDs())
}

func TestSelection_SetAllSelected(t *testing.T) {
	sel := Selection{}.ReplaceAll(sampleItems(), RedactAll).Toggle(StringID("2"))

	sel = sel.SetAllSelected(true).SetAllSelected(false)
	assert.Equal(t, 0, sel.SelectedCount())

	got := sel.Items()
	for i, want := range sampleItems() {
		assert.Equal(t, want.ID, got[i].ID, "order and identity preserved")
	}
}

func TestSelection_SelectedIDsOrdered(t *testing.T) {
	sel := Selection{}.ReplaceAll(sampleItems(), RedactAll).Toggle(StringID("2"))
	assert.Equal(t, []ItemID{StringID("1"), NumberID(7)}, sel.SelectedIDs())

	empty := Selection{}
	assert.Empty(t, empty.SelectedIDs())
	assert.NotNil(t, empty.SelectedIDs(), "empty selection still encodes as []")
}

func TestSelection_Lookup(t *testing.T) {
	sel := Selection{}.ReplaceAll(sampleItems(), RedactAll)
	it, ok := sel.Lookup(NumberID(7))
	require.True(t, ok)
	assert.Equal(t, "555-0100", it.Text)

	_, ok = sel.Lookup(StringID("7"))
	assert.False(t, ok)
}

// =============================================================================
// UPLOAD STATE TESTS
// =============================================================================

func TestUploadState_NewFileClearsRedacted(t *testing.T) {
	var u UploadState
	u = u.WithFile(upload.NewFile("a.png", []byte("a"))).WithRedacted("AAAA")
	require.True(t, u.HasRedacted())

	u = u.WithFile(upload.NewFile("b.png", []byte("b")))
	assert.False(t, u.HasRedacted())
	assert.Equal(t, "b.png", u.File.Name)
	assert.NotEmpty(t, u.PreviewURL)
}

func TestUploadState_RedactedPNG(t *testing.T) {
	var u UploadState
	_, err := u.RedactedPNG()
	assert.ErrorIs(t, err, ErrNoRedactedImage)

	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	u = u.WithRedacted(payload)
	assert.Equal(t, "data:image/png;base64,"+payload, u.RedactedPreview)

	data, err := u.RedactedPNG()
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	u = u.WithRedacted("<data>")
	assert.True(t, u.HasRedacted(), "undecodable payload is still a preview")
	_, err = u.RedactedPNG()
	assert.Error(t, err)
}
