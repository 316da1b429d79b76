// Package registry tracks the ephemeral side of a draft session: connected
// participants and the per-session commit lock. Everything here is
// rebuildable from the store plus live connection events; losing it never
// corrupts durable state.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection is one participant's live presence in a session. It is used for
// authorization and the online list only, never as draft state.
type Connection struct {
	ID            string
	SessionID     uuid.UUID
	ParticipantID uuid.UUID
	DisplayName   string
	ConnectedAt   time.Time
}

// Registry is an injected, process-lifetime map from session id to live
// state. All operations are atomic; entries for different sessions are
// independent.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	commitMu sync.Mutex
	// holders counts callers currently inside Lock/unlock; an entry is
	// dropped only when it has no holders and no connections left.
	holders int
	conns   map[string]Connection
}

func New() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*session)}
}

// dropIfIdle removes the session entry once nothing references it. Caller
// holds r.mu.
func (r *Registry) dropIfIdle(id uuid.UUID, s *session) {
	if s.holders == 0 && len(s.conns) == 0 && r.sessions[id] == s {
		delete(r.sessions, id)
	}
}

// Lock acquires the session's commit lock and returns its release func.
// Every state-changing draft operation (pick, pause, resume, reset, expiry)
// runs under this lock, so a human pick and a timer expiry can never
// double-commit a turn.
func (r *Registry) Lock(sessionID uuid.UUID) func() {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{conns: make(map[string]Connection)}
		r.sessions[sessionID] = s
	}
	s.holders++
	r.mu.Unlock()

	s.commitMu.Lock()
	return func() {
		s.commitMu.Unlock()
		r.mu.Lock()
		s.holders--
		r.dropIfIdle(sessionID, s)
		r.mu.Unlock()
	}
}

// AddConnection registers a participant connection for the session.
func (r *Registry) AddConnection(conn Connection) {
	r.mu.Lock()
	s, ok := r.sessions[conn.SessionID]
	if !ok {
		s = &session{conns: make(map[string]Connection)}
		r.sessions[conn.SessionID] = s
	}
	s.conns[conn.ID] = conn
	r.mu.Unlock()
}

// RemoveConnection drops a connection, returning it if it was registered.
// The session entry itself is released with its last connection.
func (r *Registry) RemoveConnection(sessionID uuid.UUID, connID string) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, found := r.sessions[sessionID]
	if !found {
		return Connection{}, false
	}
	conn, ok := s.conns[connID]
	if ok {
		delete(s.conns, connID)
	}
	r.dropIfIdle(sessionID, s)
	return conn, ok
}

// Connection looks up a registered connection.
func (r *Registry) Connection(sessionID uuid.UUID, connID string) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return Connection{}, false
	}
	conn, ok := s.conns[connID]
	return conn, ok
}

// Online returns the session's connected participants ordered by connect
// time, then id for stability.
func (r *Registry) Online(sessionID uuid.UUID) []Connection {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	conns := make([]Connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	sort.Slice(conns, func(i, j int) bool {
		if !conns[i].ConnectedAt.Equal(conns[j].ConnectedAt) {
			return conns[i].ConnectedAt.Before(conns[j].ConnectedAt)
		}
		return conns[i].ID < conns[j].ID
	})
	return conns
}
