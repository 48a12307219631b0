package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns every live Store, keyed by session ID.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*Store
	idleTimeout time.Duration
	now         func() time.Time
	onDestroy   []func(id uuid.UUID)
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[uuid.UUID]*Store),
		idleTimeout: idleTimeout,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Create starts a new session with an empty transcript and archive.
func (m *Manager) Create() *Store {
	s := newStore(uuid.New(), m.now)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	return s
}

func (m *Manager) Get(id uuid.UUID) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

// OnDestroy registers fn to run after a session is destroyed or swept.
// Register hooks before serving traffic.
func (m *Manager) OnDestroy(fn func(id uuid.UUID)) {
	m.mu.Lock()
	m.onDestroy = append(m.onDestroy, fn)
	m.mu.Unlock()
}

// Destroy ends a session. Its transcript and archive are discarded.
func (m *Manager) Destroy(id uuid.UUID) bool {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, id)
	hooks := m.onDestroy
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}
	return true
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep destroys sessions idle for longer than the idle timeout and returns
// how many were removed. A zero timeout disables sweeping.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}

	m.mu.Lock()
	var expired []uuid.UUID
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.idleTimeout {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	hooks := m.onDestroy
	m.mu.Unlock()

	for _, id := range expired {
		for _, fn := range hooks {
			fn(id)
		}
	}
	return len(expired)
}

// StartJanitor sweeps idle sessions every interval until Stop is called.
func (m *Manager) StartJanitor(interval time.Duration) {
	if m.idleTimeout <= 0 || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				if n := m.Sweep(m.now()); n > 0 {
					log.Printf("Session janitor: expired %d idle session(s)", n)
				}
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}
