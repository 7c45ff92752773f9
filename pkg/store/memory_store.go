package store

import (
	"sync"

	"proposalai/pkg/domain"
)

// MemoryStore keeps all records in-process. It is the default backend and
// mirrors the single-client key-value layout the service replaces.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User // key: user ID
	email     map[string]string      // email -> user ID
	proposals map[string]domain.Proposal
	orders    []string // proposal insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		email:     make(map[string]string),
		proposals: make(map[string]domain.Proposal),
	}
}

// SaveUser stores or replaces a user record.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.users[u.ID]; ok && prev.Email != u.Email {
		delete(m.email, prev.Email)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// DeleteUser removes a user. Proposals owned by the user are kept; orphaned
// records are accepted behavior.
func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.email, u.Email)
	}
	delete(m.users, id)
	return nil
}

// SaveProposal stores or replaces a proposal and tracks insertion order.
func (m *MemoryStore) SaveProposal(p domain.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.proposals[p.ID]; !exists {
		m.orders = append(m.orders, p.ID)
	}
	m.proposals[p.ID] = p
	return nil
}

// ListProposals returns all proposals in insertion order.
func (m *MemoryStore) ListProposals() ([]domain.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Proposal, 0, len(m.orders))
	for _, id := range m.orders {
		if p, ok := m.proposals[id]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

// ListProposalsByOwner returns proposals filtered by owner ID.
func (m *MemoryStore) ListProposalsByOwner(ownerID string) ([]domain.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Proposal, 0, len(m.orders))
	for _, id := range m.orders {
		if p, ok := m.proposals[id]; ok && p.UserID == ownerID {
			res = append(res, p)
		}
	}
	return res, nil
}

// GetProposal retrieves a proposal by ID.
func (m *MemoryStore) GetProposal(id string) (domain.Proposal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.proposals[id]
	return p, ok, nil
}

// DeleteProposal removes a proposal. Absent IDs are a no-op.
func (m *MemoryStore) DeleteProposal(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.proposals, id)
	filtered := m.orders[:0]
	for _, item := range m.orders {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.orders = filtered
	return nil
}
