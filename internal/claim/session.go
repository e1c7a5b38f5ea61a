package claim

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/claims-precheck/internal/decision"
)

// Session is the per-user state behind the form: its history and the last result.
// A session starts with an empty history and no last result.
type Session struct {
	ID string

	// mu is held for the whole of a submission, so a session never has
	// more than one call to the decision service in flight.
	mu                 sync.Mutex
	history            *History
	lastResult         *decision.ClaimResult
	lastDaysDifference int
	lastClaimID        int64
	lastSeen           time.Time
}

// SessionView is a point-in-time copy of a session for rendering
type SessionView struct {
	ID                 string
	History            []HistoryEntry
	LastResult         *decision.ClaimResult
	LastDaysDifference int
	LastClaimID        int64
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		history:  NewHistory(),
		lastSeen: now,
	}
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		ID:                 s.ID,
		History:            s.history.List(),
		LastResult:         s.lastResult,
		LastDaysDifference: s.lastDaysDifference,
		LastClaimID:        s.lastClaimID,
	}
}

// History returns the session's history entries, most recent first
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.List()
}

// ClearHistory empties the history. The last result is left as is.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
}

// setLastResult stores the latest result and its companion fields together.
// Callers must hold s.mu.
func (s *Session) setLastResult(result *decision.ClaimResult, daysDifference int, claimID int64) {
	s.lastResult = result
	s.lastDaysDifference = daysDifference
	s.lastClaimID = claimID
}

// DefaultSessionTTL is how long an idle session is kept
const DefaultSessionTTL = time.Hour

// DefaultMaxSessions bounds the store when no other cap is given
const DefaultMaxSessions = 10000

// SessionStore keeps sessions isolated from each other, keyed by an opaque ID
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	ttl         time.Duration
	maxSessions int
	timeSource  TimeSource
}

// SessionStoreOption configures a SessionStore
type SessionStoreOption func(*SessionStore)

// WithMaxSessions caps the number of live sessions. When a new session would
// exceed the cap, the least recently used one is dropped. A cap of zero or less
// leaves the store unbounded.
func WithMaxSessions(n int) SessionStoreOption {
	return func(st *SessionStore) {
		st.maxSessions = n
	}
}

// NewSessionStore creates a SessionStore that discards sessions idle for longer than ttl.
// A ttl of zero disables idle expiry; the session cap still applies.
func NewSessionStore(ttl time.Duration, opts ...SessionStoreOption) *SessionStore {
	return NewSessionStoreWithDeps(ttl, &defaultTimeSource{}, opts...)
}

// NewSessionStoreWithDeps creates a SessionStore with a custom time source for testing
func NewSessionStoreWithDeps(ttl time.Duration, timeSrc TimeSource, opts ...SessionStoreOption) *SessionStore {
	st := &SessionStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: DefaultMaxSessions,
		timeSource:  timeSrc,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// GetOrCreate returns the session for id, creating a new one when id is unknown or expired.
// The boolean reports whether a new session was created.
func (st *SessionStore) GetOrCreate(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.timeSource.Now()
	st.evictExpired(now)

	if sess, ok := st.sessions[id]; ok && id != "" {
		sess.lastSeen = now
		return sess, false
	}

	if st.maxSessions > 0 {
		for len(st.sessions) >= st.maxSessions {
			st.evictOldest()
		}
	}

	sess := newSession(uuid.NewString(), now)
	st.sessions[sess.ID] = sess
	return sess, true
}

// Get returns an existing session
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok || st.expired(sess, st.timeSource.Now()) {
		return nil, false
	}
	return sess, true
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(sess *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(sess.lastSeen) > st.ttl
}

// evictExpired must be called with st.mu held
func (st *SessionStore) evictExpired(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, sess := range st.sessions {
		if st.expired(sess, now) {
			delete(st.sessions, id)
		}
	}
}

// evictOldest drops the least recently used session. Callers must hold st.mu.
func (st *SessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range st.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(st.sessions, oldestID)
}
