// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chat session registry.
package session

import (
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the durable local storage the registry flushes to.
//
// Persistence is best-effort: the manager logs and swallows store errors,
// history is a convenience rather than a correctness-critical record.
type Store interface {
	// SaveSessions persists the full session list, newest-first.
	SaveSessions(sessions []*Session) error
	// LoadSessions returns the persisted session list, newest-first.
	// A missing store yields an empty list, not an error.
	LoadSessions() ([]*Session, error)
	// SaveActiveID persists the active-session pointer. Empty id removes it.
	SaveActiveID(id string) error
	// LoadActiveID returns the persisted pointer, empty when absent.
	LoadActiveID() (string, error)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the registry of sessions and the active-session pointer.
// It is the only writer to the registry; every mutation is flushed to the
// store synchronously.
//
// The active session is allowed to be a draft: a freshly started session
// that has no turns yet. Drafts are never persisted, so abandoned "new
// chat" actions leave no registry entries behind.
type Manager struct {
	mu       sync.Mutex
	store    Store // may be nil for in-memory use
	sessions []*Session
	index    map[string]*Session
	active   *Session
}

// NewManager creates a manager and reloads persisted state from the store.
func NewManager(store Store) *Manager {
	m := &Manager{
		store: store,
		index: make(map[string]*Session),
	}

	if store != nil {
		sessions, err := store.LoadSessions()
		if err != nil {
			log.Printf("session: failed to load history: %v", err)
		}
		for _, s := range sessions {
			m.sessions = append(m.sessions, s)
			m.index[s.ID] = s
		}

		activeID, err := store.LoadActiveID()
		if err != nil {
			log.Printf("session: failed to load active pointer: %v", err)
		}
		if s, ok := m.index[activeID]; ok {
			m.active = s
		}
	}

	// Never start without an active session; a pointer to a removed or
	// never-persisted id degrades to a fresh draft.
	if m.active == nil {
		m.active = NewSession()
		m.flushActiveLocked()
	}

	return m
}

// =============================================================================
// OPERATIONS
// =============================================================================

// StartNewChat makes a fresh empty session active and returns its id.
// The session is not added to the registry until it has at least one turn.
func (m *Manager) StartNewChat() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = NewSession()
	m.flushActiveLocked()
	return m.active.ID
}

// LoadChat makes the given session active. Unknown ids are a silent no-op.
func (m *Manager) LoadChat(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.index[id]
	if !ok {
		return
	}
	m.active = s
	m.flushActiveLocked()
}

// DeleteChat removes a session from the registry. Deleting the active
// session immediately starts a new chat so the pointer is never left on a
// removed id.
func (m *Manager) DeleteChat(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[id]; !ok {
		return
	}
	delete(m.index, id)
	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			break
		}
	}

	if m.active != nil && m.active.ID == id {
		m.active = NewSession()
		m.flushActiveLocked()
	}
	m.flushSessionsLocked()
}

// AppendTurn appends a turn to the active session and upserts it into the
// registry: inserted newest-first if it was a draft, re-sorted to the front
// otherwise. Title and UpdatedAt are recomputed and the registry is flushed.
func (m *Manager) AppendTurn(role Role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.active
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
	s.RefreshTitle()
	s.UpdatedAt = time.Now()

	if _, registered := m.index[s.ID]; !registered {
		m.index[s.ID] = s
		m.sessions = append([]*Session{s}, m.sessions...)
	} else {
		m.promoteLocked(s.ID)
	}

	m.flushSessionsLocked()
	m.flushActiveLocked()
}

// promoteLocked moves a session to the front of the newest-first list.
func (m *Manager) promoteLocked(id string) {
	for i, s := range m.sessions {
		if s.ID == id {
			if i > 0 {
				m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
				m.sessions = append([]*Session{s}, m.sessions...)
			}
			return
		}
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveID returns the id of the active session.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.ID
}

// ActiveTurns returns a copy of the active session's turns.
func (m *Manager) ActiveTurns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := make([]Turn, len(m.active.Turns))
	copy(turns, m.active.Turns)
	return turns
}

// ActiveTitle returns the active session's derived title.
func (m *Manager) ActiveTitle() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.Title
}

// Has reports whether the id is present in the registry.
func (m *Manager) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[id]
	return ok
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Get returns a snapshot copy of a registered session.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.index[id]
	if !ok {
		return Session{}, false
	}
	return snapshot(s), true
}

// List returns snapshot copies of all registered sessions, newest-first.
func (m *Manager) List() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, snapshot(s))
	}
	return out
}

// Search returns sessions with any turn containing the query, newest-first.
// Matching is case-insensitive over NFC-normalized text so composed and
// decomposed spellings of the same characters compare equal.
func (m *Manager) Search(query string) []Session {
	if query == "" {
		return m.List()
	}
	needle := strings.ToLower(norm.NFC.String(query))

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Session
	for _, s := range m.sessions {
		for _, turn := range s.Turns {
			haystack := strings.ToLower(norm.NFC.String(turn.Content))
			if strings.Contains(haystack, needle) {
				out = append(out, snapshot(s))
				break
			}
		}
	}
	return out
}

// snapshot deep-copies a session so callers cannot mutate registry state.
func snapshot(s *Session) Session {
	out := *s
	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)
	return out
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// flushSessionsLocked writes the session list, logging and swallowing
// failures. Caller must hold the lock.
func (m *Manager) flushSessionsLocked() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveSessions(m.sessions); err != nil {
		log.Printf("session: failed to persist history: %v", err)
	}
}

// flushActiveLocked writes the active pointer, logging and swallowing
// failures. Caller must hold the lock.
func (m *Manager) flushActiveLocked() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveActiveID(m.active.ID); err != nil {
		log.Printf("session: failed to persist active pointer: %v", err)
	}
}
