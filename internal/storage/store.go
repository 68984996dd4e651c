// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable local persistence for chat history.
//
// The layout is two keys under one directory (default ~/.alphabot):
//   - sessions.json     JSON array of sessions, newest-first
//   - active_session    the active session id, absent when none
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/alphabot-dev/alphabot-tui/internal/session"
	"github.com/alphabot-dev/alphabot-tui/internal/util"
)

// =============================================================================
// LOCAL STORE
// =============================================================================

const (
	sessionsFile = "sessions.json"
	activeFile   = "active_session"
)

// LocalStore persists the session registry to a local directory.
// It implements session.Store. All writes are atomic (temp + fsync +
// rename) so a crash never leaves a partially written history.
type LocalStore struct {
	// BaseDir is the storage directory. Default: ~/.alphabot
	BaseDir string
}

// NewLocalStore creates a store under the user's home directory.
func NewLocalStore() (*LocalStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewLocalStoreWithDir(filepath.Join(homeDir, ".alphabot"))
}

// NewLocalStoreWithDir creates a store with a custom directory.
func NewLocalStoreWithDir(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{BaseDir: baseDir}, nil
}

// =============================================================================
// SESSION LIST
// =============================================================================

// SaveSessions persists the full session list, newest-first.
func (s *LocalStore) SaveSessions(sessions []*session.Session) error {
	if sessions == nil {
		sessions = []*session.Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	return util.AtomicWriteFile(filepath.Join(s.BaseDir, sessionsFile), data, 0644)
}

// LoadSessions returns the persisted session list. A missing file is an
// empty history, not an error.
func (s *LocalStore) LoadSessions() ([]*session.Session, error) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, sessionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []*session.Session{}, nil
		}
		return nil, err
	}

	var sessions []*session.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// =============================================================================
// ACTIVE POINTER
// =============================================================================

// SaveActiveID persists the active-session pointer. An empty id removes it.
func (s *LocalStore) SaveActiveID(id string) error {
	path := filepath.Join(s.BaseDir, activeFile)
	if id == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return util.AtomicWriteFile(path, []byte(id+"\n"), 0644)
}

// LoadActiveID returns the persisted pointer, empty when absent.
func (s *LocalStore) LoadActiveID() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, activeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
