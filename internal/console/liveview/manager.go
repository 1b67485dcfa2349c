package liveview

import (
	"sort"
	"sync"

	"github.com/bopopescu/openlava-web/internal/dashboard"
)

// Manager tracks the live sessions currently attached to browsers.
// Several browsers may watch the same user; each gets its own session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[*dashboard.Session]struct{}
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[*dashboard.Session]struct{})}
}

func (m *Manager) Register(sess *dashboard.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess] = struct{}{}
}

func (m *Manager) Unregister(sess *dashboard.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sess)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Snapshots returns one stats row per live view, ordered by user then
// start time.
func (m *Manager) Snapshots() []dashboard.Stats {
	m.mu.RLock()
	out := make([]dashboard.Stats, 0, len(m.sessions))
	for sess := range m.sessions {
		out = append(out, sess.Stats())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].User != out[j].User {
			return out[i].User < out[j].User
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})

	return out
}

// StopAll halts every session, for daemon shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := make([]*dashboard.Session, 0, len(m.sessions))
	for sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[*dashboard.Session]struct{})
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Stop()
	}
}
