package store

import (
	"sync"

	"proposalai/internal/util"
)

// MemorySessionStore keeps session tokens in-process.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]string // token -> user ID
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]string)}
}

// NewSession creates a session token for a user.
func (m *MemorySessionStore) NewSession(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := util.NewID()
	m.sess[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a token to its user ID.
func (m *MemorySessionStore) GetUserIDByToken(token string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.sess[token]
	return uid, ok, nil
}

// DeleteSession removes a token mapping.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}

// DeleteSessionsForUser removes every session bound to the user, used when
// the account itself is deleted.
func (m *MemorySessionStore) DeleteSessionsForUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, uid := range m.sess {
		if uid == userID {
			delete(m.sess, token)
		}
	}
}
