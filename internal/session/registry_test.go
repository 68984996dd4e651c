// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"testing"
)

// =============================================================================
// FAKE STORE
// =============================================================================

// memStore is an in-memory Store for registry tests.
type memStore struct {
	sessions []*Session
	activeID string

	saveErr    error
	saveCount  int
	activeSets int
}

func (s *memStore) SaveSessions(sessions []*Session) error {
	s.saveCount++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions = make([]*Session, len(sessions))
	copy(s.sessions, sessions)
	return nil
}

func (s *memStore) LoadSessions() ([]*Session, error) {
	return s.sessions, nil
}

func (s *memStore) SaveActiveID(id string) error {
	s.activeSets++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.activeID = id
	return nil
}

func (s *memStore) LoadActiveID() (string, error) {
	return s.activeID, nil
}

// =============================================================================
// DRAFT SEMANTICS
// =============================================================================

func TestNewManagerStartsWithDraft(t *testing.T) {
	m := NewManager(nil)

	if m.ActiveID() == "" {
		t.Error("manager must always have an active session")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, a draft must not be registered", m.Len())
	}
	if len(m.ActiveTurns()) != 0 {
		t.Error("draft should have no turns")
	}
}

func TestDraftNotPersistedUntilFirstTurn(t *testing.T) {
	store := &memStore{}
	m := NewManager(store)

	m.StartNewChat()
	m.StartNewChat()
	if len(store.sessions) != 0 {
		t.Errorf("store has %d sessions, abandoned drafts must not persist", len(store.sessions))
	}

	m.AppendTurn(RoleUser, "first real message")
	if len(store.sessions) != 1 {
		t.Fatalf("store has %d sessions, want 1 after first turn", len(store.sessions))
	}
	if store.activeID != m.ActiveID() {
		t.Errorf("persisted active id = %q, want %q", store.activeID, m.ActiveID())
	}
}

func TestAppendTurnPromotesDraft(t *testing.T) {
	m := NewManager(nil)
	id := m.ActiveID()

	m.AppendTurn(RoleUser, "hello")

	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if !m.Has(id) {
		t.Error("active draft should be registered after its first turn")
	}
	if m.ActiveTitle() != "hello" {
		t.Errorf("title = %q, want derived from the first turn", m.ActiveTitle())
	}
}

// =============================================================================
// REGISTRY OPERATIONS
// =============================================================================

func TestAppendTurnKeepsNewestFirst(t *testing.T) {
	m := NewManager(nil)

	m.AppendTurn(RoleUser, "first chat")
	firstID := m.ActiveID()

	m.StartNewChat()
	m.AppendTurn(RoleUser, "second chat")
	secondID := m.ActiveID()

	list := m.List()
	if len(list) != 2 || list[0].ID != secondID || list[1].ID != firstID {
		t.Fatalf("order = %v, want newest first", []string{list[0].ID, list[1].ID})
	}

	// Appending to the older chat promotes it back to the front.
	m.LoadChat(firstID)
	m.AppendTurn(RoleUser, "follow-up")
	list = m.List()
	if list[0].ID != firstID {
		t.Errorf("front = %q, want the just-updated session", list[0].ID)
	}
}

func TestLoadChatUnknownIDIsNoOp(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "hello")
	id := m.ActiveID()

	m.LoadChat("sess_does-not-exist")
	if m.ActiveID() != id {
		t.Errorf("active = %q, unknown id must not change the pointer", m.ActiveID())
	}
}

func TestLoadChatSwitchesActive(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "chat one")
	one := m.ActiveID()

	m.StartNewChat()
	m.AppendTurn(RoleUser, "chat two")

	m.LoadChat(one)
	if m.ActiveID() != one {
		t.Fatalf("active = %q, want %q", m.ActiveID(), one)
	}
	turns := m.ActiveTurns()
	if len(turns) != 1 || turns[0].Content != "chat one" {
		t.Errorf("turns = %v", turns)
	}
}

func TestDeleteActiveStartsNewChat(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "to be deleted")
	id := m.ActiveID()

	m.DeleteChat(id)

	if m.Has(id) {
		t.Error("deleted session still registered")
	}
	if m.ActiveID() == id {
		t.Error("pointer still on the deleted session")
	}
	if len(m.ActiveTurns()) != 0 {
		t.Error("replacement session should be a fresh draft")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "old chat")
	old := m.ActiveID()

	m.StartNewChat()
	m.AppendTurn(RoleUser, "current chat")
	current := m.ActiveID()

	m.DeleteChat(old)
	if m.ActiveID() != current {
		t.Errorf("active = %q, deleting another session must not move the pointer", m.ActiveID())
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "hello")

	m.DeleteChat("sess_ghost")
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestManagerReloadsPersistedState(t *testing.T) {
	store := &memStore{}
	m := NewManager(store)
	m.AppendTurn(RoleUser, "persisted chat")
	m.AppendTurn(RoleAssistant, "persisted answer")
	id := m.ActiveID()

	// A second manager over the same store sees the same state.
	m2 := NewManager(store)
	if m2.ActiveID() != id {
		t.Errorf("reloaded active = %q, want %q", m2.ActiveID(), id)
	}
	turns := m2.ActiveTurns()
	if len(turns) != 2 || turns[1].Content != "persisted answer" {
		t.Errorf("reloaded turns = %v", turns)
	}
}

func TestManagerStalePointerDegradesToDraft(t *testing.T) {
	store := &memStore{activeID: "sess_removed"}
	m := NewManager(store)

	if m.ActiveID() == "sess_removed" {
		t.Error("pointer to an unknown session must not survive load")
	}
	if len(m.ActiveTurns()) != 0 {
		t.Error("fallback session should be a fresh draft")
	}
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	m := NewManager(store)

	// Mutations succeed in memory even when every flush fails.
	m.AppendTurn(RoleUser, "survives")
	if m.Len() != 1 {
		t.Errorf("Len = %d, in-memory state must stay authoritative", m.Len())
	}
	if store.saveCount == 0 {
		t.Error("flush should have been attempted")
	}
}

// =============================================================================
// SNAPSHOTS AND SEARCH
// =============================================================================

func TestListReturnsSnapshots(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "original")

	list := m.List()
	list[0].Turns[0].Content = "mutated"
	list[0].Title = "mutated"

	if got := m.ActiveTurns()[0].Content; got != "original" {
		t.Errorf("registry content = %q, caller mutation leaked in", got)
	}
	if m.ActiveTitle() != "original" {
		t.Errorf("registry title = %q", m.ActiveTitle())
	}
}

func TestSearchMatchesTurnContent(t *testing.T) {
	m := NewManager(nil)
	m.AppendTurn(RoleUser, "tell me about NVDA earnings")

	m.StartNewChat()
	m.AppendTurn(RoleUser, "what is a covered call?")

	got := m.Search("nvda")
	if len(got) != 1 || got[0].Turns[0].Content != "tell me about NVDA earnings" {
		t.Fatalf("Search = %v, want the NVDA chat (case-insensitive)", got)
	}

	if got := m.Search("no such thing"); len(got) != 0 {
		t.Errorf("Search = %v, want empty", got)
	}
	if got := m.Search(""); len(got) != 2 {
		t.Errorf("empty query returned %d sessions, want all", len(got))
	}
}

func TestSearchUnicodeNormalization(t *testing.T) {
	m := NewManager(nil)
	// Decomposed spelling: 'e' followed by a combining acute accent.
	m.AppendTurn(RoleUser, "Socie\u0301te\u0301 Ge\u0301ne\u0301rale outlook")

	// Composed query (precomposed \u00e9) still matches.
	got := m.Search("Soci\u00e9t\u00e9 G\u00e9n\u00e9rale")
	if len(got) != 1 {
		t.Errorf("Search returned %d sessions, composed and decomposed forms should match", len(got))
	}
}
