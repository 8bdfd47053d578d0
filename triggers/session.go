package triggers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListTimeout is how long a trigger list stays interactive after its last use.
const ListTimeout = 60 * time.Second

// Session ties a paginator to the user who opened it and the message showing
// it.
type Session struct {
	ID        string
	OwnerID   string
	ChannelID string
	MessageID string

	mu        sync.Mutex
	paginator *Paginator
	timer     *time.Timer
}

// View runs fn with exclusive access to the paginator.
func (s *Session) View(fn func(p *Paginator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.paginator)
}

// Store keeps live list sessions and expires them after a period of
// inactivity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	onExpire func(*Session)
}

// NewStore creates a store. onExpire runs on its own goroutine after a session
// has been removed.
func NewStore(ttl time.Duration, onExpire func(*Session)) *Store {
	if ttl <= 0 {
		ttl = ListTimeout
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		onExpire: onExpire,
	}
}

func newSessionID() string {
	return uuid.NewString()[:8]
}

// Create registers a new session for ownerID and starts its expiry timer.
func (st *Store) Create(ownerID, channelID string, p *Paginator) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := newSessionID()
	for _, taken := st.sessions[id]; taken; _, taken = st.sessions[id] {
		id = newSessionID()
	}

	s := &Session{ID: id, OwnerID: ownerID, ChannelID: channelID, paginator: p}
	s.timer = time.AfterFunc(st.ttl, func() { st.expire(id) })
	st.sessions[id] = s
	return s
}

// Bind records the message that displays the session.
func (st *Store) Bind(id, messageID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		s.MessageID = messageID
	}
}

// Get returns a live session and restarts its expiry timer.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.timer.Reset(st.ttl)
	}
	return s, ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expire(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if ok && st.onExpire != nil {
		st.onExpire(s)
	}
}

// Close stops every timer without running expiry callbacks.
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.timer.Stop()
		delete(st.sessions, id)
	}
}
