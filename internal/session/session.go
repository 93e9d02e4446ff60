// Package session tracks which registry caches have already been synchronized
// with their remotes during one invocation of the tool.
//
// A Session replaces process-wide mutable state: callers create one per
// logical run and pass it to every registry handle they open, so that two
// handles for the same remote share a single clone/fetch round-trip.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Session records the sync status of registry caches for one run.
// The zero value is not usable; create sessions with New.
type Session struct {
	id string

	mu         sync.Mutex
	synced     map[string]bool
	suppressed bool
}

// New creates an empty session. Nothing is synced and sync is not suppressed.
func New() *Session {
	return &Session{
		id:     uuid.NewString(),
		synced: make(map[string]bool),
	}
}

// ID identifies the session in logs and traces
func (s *Session) ID() string {
	return s.id
}

// IsSynced reports whether the registry identified by fullName has been
// cloned or fetched in this session.
func (s *Session) IsSynced(fullName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced[fullName]
}

// MarkSynced records that the registry identified by fullName is up to date.
// Entries are never cleared for the lifetime of the session.
func (s *Session) MarkSynced(fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[fullName] = true
}

// SuppressSync ORs noPull into the session-wide suppression flag. Once any
// caller asks for no network sync the session stays suppressed.
func (s *Session) SuppressSync(noPull bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressed = s.suppressed || noPull
}

// SyncSuppressed reports whether network sync has been suppressed.
func (s *Session) SyncSuppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// Synced returns the full names of all registries synced so far.
func (s *Session) Synced() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.synced))
	for name, ok := range s.synced {
		if ok {
			names = append(names, name)
		}
	}
	return names
}
