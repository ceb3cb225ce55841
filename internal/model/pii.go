// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// =============================================================================
// ITEM ID
// =============================================================================

// ItemID identifies a detected item within one detection batch.
//
// The detector decides the id's JSON type (the reference server uses word
// indexes, other detectors use strings). ItemID keeps the raw JSON token so
// selected ids are sent back exactly as they were issued. Any JSON value is
// accepted; a null id is the zero ItemID and is sent back as null. Two ids
// are equal when their tokens are equal, so ItemID is usable as a map key.
type ItemID struct {
	raw string
}

// StringID returns an id encoded as a JSON string.
func StringID(s string) ItemID {
	b, _ := json.Marshal(s)
	return ItemID{raw: string(b)}
}

// NumberID returns an id encoded as a JSON number.
func NumberID(n int64) ItemID {
	return ItemID{raw: strconv.FormatInt(n, 10)}
}

// ParseItemID interprets user input as an id: integers become number ids,
// anything else a string id.
func ParseItemID(s string) ItemID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NumberID(n)
	}
	return StringID(s)
}

// IsZero reports whether the id was never set.
func (id ItemID) IsZero() bool {
	return id.raw == ""
}

// Raw returns the JSON token of the id.
func (id ItemID) Raw() string {
	return id.raw
}

// String returns the id for display; string ids are unquoted.
func (id ItemID) String() string {
	if len(id.raw) > 0 && id.raw[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(id.raw), &s); err == nil {
			return s
		}
	}
	return id.raw
}

// MarshalJSON implements json.Marshaler.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if id.raw == "" {
		return []byte("null"), nil
	}
	return []byte(id.raw), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ItemID{}
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	id.raw = buf.String()
	return nil
}

// =============================================================================
// PII ITEM
// =============================================================================

// BoundingBox is the image region a detected item occupies, in pixels.
type BoundingBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PiiItem is one detected candidate and whether the user wants it redacted.
type PiiItem struct {
	ID   ItemID `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`

	// BBox is reported by some detectors; display only.
	BBox *BoundingBox `json:"bbox,omitempty"`

	// Selected is client state and is never read from the detector.
	Selected bool `json:"-"`
}
