package net

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// SessionStore tracks live sessions by ID and routes outbound packets.
// Safe for concurrent use; Send never blocks on a socket.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
	nextID   atomic.Uint64
	log      *zap.Logger
}

func NewSessionStore(log *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[uint64]*Session),
		log:      log,
	}
}

// NextID hands out session IDs starting at 1.
func (st *SessionStore) NextID() uint64 {
	return st.nextID.Add(1)
}

func (st *SessionStore) Add(sess *Session) {
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
}

func (st *SessionStore) Remove(id uint64) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *SessionStore) Get(id uint64) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Send queues data for one session. Unknown IDs are ignored.
func (st *SessionStore) Send(id uint64, data []byte) {
	if sess := st.Get(id); sess != nil {
		sess.Send(data)
	}
}

// SendGroup queues the same buffer for every listed session.
func (st *SessionStore) SendGroup(ids []uint64, data []byte) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, id := range ids {
		if sess := st.sessions[id]; sess != nil {
			sess.Send(data)
		}
	}
}

// Disconnect closes a session. Cleanup runs on its reader goroutine.
func (st *SessionStore) Disconnect(id uint64) {
	if sess := st.Get(id); sess != nil {
		st.log.Debug("伺服器主動斷線", zap.Uint64("session", id))
		sess.Close()
	}
}

// CloseAll closes every session, used at shutdown.
func (st *SessionStore) CloseAll() {
	st.mu.RLock()
	all := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		all = append(all, sess)
	}
	st.mu.RUnlock()
	for _, sess := range all {
		sess.Close()
	}
}
