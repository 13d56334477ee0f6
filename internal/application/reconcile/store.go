package reconcile

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/bats-attribution/internal/infrastructure/metrics"
)

// ErrSessionNotFound is returned for unknown or evicted session ids.
var ErrSessionNotFound = errors.New("session not found")

// DefaultIdleTTL is how long an unused session is kept.
const DefaultIdleTTL = 2 * time.Hour

// SessionStore keeps sessions in memory by id and evicts idle ones.
type SessionStore struct {
	ttl     time.Duration
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time

	sessions map[string]*Session
	mu       sync.RWMutex

	cleanupStop chan struct{}
	cleanupDone chan struct{}
}

// NewSessionStore creates an empty store. A ttl <= 0 uses DefaultIdleTTL.
func NewSessionStore(ttl time.Duration, recorder *metrics.Recorder, logger *slog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		ttl:      ttl,
		metrics:  recorder,
		logger:   logger.With("system", "sessions"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new empty session.
func (st *SessionStore) Create() *Session {
	sess := newSession(uuid.New().String(), st.now())

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	n := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SetActiveSessions(n)
	st.logger.Debug("session created", "session_id", sess.ID)
	return sess
}

// Get returns the session and marks it as used.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(st.now())
	return sess, nil
}

// Delete removes a session.
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	st.metrics.SetActiveSessions(n)
	return nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// EvictIdle removes sessions unused for longer than the ttl and returns how
// many were removed.
func (st *SessionStore) EvictIdle() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	removed := 0
	for id, sess := range st.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	if removed > 0 {
		st.metrics.SetActiveSessions(n)
		st.logger.Info("evicted idle sessions", "removed", removed, "active", n)
	}
	return removed
}

// StartCleanup evicts idle sessions every interval until Close is called.
func (st *SessionStore) StartCleanup(interval time.Duration) {
	st.cleanupStop = make(chan struct{})
	st.cleanupDone = make(chan struct{})

	go func() {
		defer close(st.cleanupDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-st.cleanupStop:
				return
			case <-ticker.C:
				st.EvictIdle()
			}
		}
	}()
}

// Close stops the cleanup goroutine, if running, and waits for it to exit.
func (st *SessionStore) Close() {
	if st.cleanupStop == nil {
		return
	}
	close(st.cleanupStop)
	<-st.cleanupDone
	st.cleanupStop = nil
}
