// Package session implements the Session Manager: a mutex-guarded table
// of per-connection sessions binding a project root, repository, and
// branch, per spec.md §4.8.
package session

import (
	"sync"

	"github.com/kodegraph/membank/internal/errors"
)

// Session is a transport-bound context established by init-memory-bank.
// Everything after the first init call inherits these defaults unless a
// call overrides repository/branch in its own arguments.
type Session struct {
	ID          string
	ProjectRoot string
	Repository  string
	Branch      string
}

// Manager owns the table of active sessions, one per connection (line
// transport) or per generated session id (HTTP/SSE transport).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs an empty session table.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Bind establishes or replaces the session for id, recording the
// defaults init-memory-bank supplied.
func (m *Manager) Bind(id, projectRoot, repository, branch string) *Session {
	if branch == "" {
		branch = "main"
	}
	s := &Session{ID: id, ProjectRoot: projectRoot, Repository: repository, Branch: branch}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session for id, or (nil, SessionUnbound) if absent.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, errors.SessionUnboundError("no active session for connection")
	}
	return s, nil
}

// Release drops the session for id, called on transport disconnect or
// explicit DELETE /mcp termination.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ResolveScope applies spec.md §4.7 step 3: repository/branch come from
// call arguments when supplied, otherwise fall back to the session's
// bound defaults. projectRoot always comes from the session except on a
// stateless transport call that supplies its own.
func (s *Session) ResolveScope(argRepository, argBranch string) (repository, branch string) {
	repository = s.Repository
	if argRepository != "" {
		repository = argRepository
	}
	branch = s.Branch
	if argBranch != "" {
		branch = argBranch
	}
	if branch == "" {
		branch = "main"
	}
	return repository, branch
}
