// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SELECTION POLICY
// =============================================================================

// SelectionPolicy decides the initial selected flag of a freshly detected item.
type SelectionPolicy func(item PiiItem) bool

// RedactAll selects every detected item. It is the default policy.
func RedactAll(PiiItem) bool { return true }

// RedactNone leaves every detected item unselected.
func RedactNone(PiiItem) bool { return false }

// PolicyFor maps the redact_by_default setting to a policy.
func PolicyFor(redactByDefault bool) SelectionPolicy {
	if redactByDefault {
		return RedactAll
	}
	return RedactNone
}

// =============================================================================
// SELECTION MODEL
// =============================================================================

// Selection is the ordered set of detected items with their selected flags.
//
// Every operation returns a new Selection; the receiver is left untouched.
// Items are never removed individually. The set only shrinks via ReplaceAll
// or by replacing the value with the zero Selection.
type Selection struct {
	items []PiiItem
}

// ReplaceAll discards the current set and installs items, each item's
// selected flag decided by policy. A nil policy means RedactAll.
func (s Selection) ReplaceAll(items []PiiItem, policy SelectionPolicy) Selection {
	if policy == nil {
		policy = RedactAll
	}
	next := make([]PiiItem, len(items))
	for i, it := range items {
		it.Selected = policy(it)
		next[i] = it
	}
	return Selection{items: next}
}

// SetAllSelected sets every item's selected flag to value.
func (s Selection) SetAllSelected(value bool) Selection {
	next := s.clone()
	for i := range next {
		next[i].Selected = value
	}
	return Selection{items: next}
}

// Toggle flips the selected flag of the item whose id matches.
// An unknown id is a no-op.
func (s Selection) Toggle(id ItemID) Selection {
	next := s.clone()
	for i := range next {
		if next[i].ID == id {
			next[i].Selected = !next[i].Selected
		}
	}
	return Selection{items: next}
}

// SelectedIDs returns the ids of the selected items in order.
func (s Selection) SelectedIDs() []ItemID {
	ids := make([]ItemID, 0, len(s.items))
	for _, it := range s.items {
		if it.Selected {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Items returns a copy of the items in order.
func (s Selection) Items() []PiiItem {
	return s.clone()
}

// Len returns the number of detected items.
func (s Selection) Len() int {
	return len(s.items)
}

// SelectedCount returns how many items are selected.
func (s Selection) SelectedCount() int {
	n := 0
	for _, it := range s.items {
		if it.Selected {
			n++
		}
	}
	return n
}

// Lookup returns the item with the given id.
func (s Selection) Lookup(id ItemID) (PiiItem, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return PiiItem{}, false
}

func (s Selection) clone() []PiiItem {
	out := make([]PiiItem, len(s.items))
	copy(out, s.items)
	return out
}
