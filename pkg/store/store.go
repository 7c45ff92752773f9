package store

import "proposalai/pkg/domain"

// Store defines persistence operations for users and proposals.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	DeleteUser(id string) error

	// proposals
	SaveProposal(domain.Proposal) error
	ListProposals() ([]domain.Proposal, error)
	ListProposalsByOwner(ownerID string) ([]domain.Proposal, error)
	GetProposal(id string) (domain.Proposal, bool, error)
	DeleteProposal(id string) error
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
