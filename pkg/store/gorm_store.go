package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"proposalai/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ProposalModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password", "company", "is_admin"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// DeleteUser removes a user record. Owned proposals are left in place.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

// SaveProposal stores or updates a proposal.
func (s *GormStore) SaveProposal(p domain.Proposal) error {
	model, err := proposalToModel(p)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "client_name", "client_email", "project_description",
			"budget", "deadline", "additional_notes", "content", "updated_at",
		}),
	}).Create(&model).Error
}

// ListProposals returns all proposals ordered by created_at.
func (s *GormStore) ListProposals() ([]domain.Proposal, error) {
	return s.listProposals("created_at ASC")
}

// ListProposalsByOwner returns proposals filtered by owner.
func (s *GormStore) ListProposalsByOwner(ownerID string) ([]domain.Proposal, error) {
	return s.listProposals("created_at ASC", "user_id = ?", ownerID)
}

func (s *GormStore) listProposals(order string, conds ...any) ([]domain.Proposal, error) {
	var models []ProposalModel
	tx := s.db.Order(order)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Proposal, 0, len(models))
	for _, m := range models {
		p, err := proposalFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

// GetProposal retrieves a proposal.
func (s *GormStore) GetProposal(id string) (domain.Proposal, bool, error) {
	var model ProposalModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Proposal{}, false, nil
		}
		return domain.Proposal{}, false, err
	}
	p, err := proposalFromModel(model)
	if err != nil {
		return domain.Proposal{}, false, err
	}
	return p, true, nil
}

// DeleteProposal removes a proposal. Absent IDs are a no-op.
func (s *GormStore) DeleteProposal(id string) error {
	return s.db.Delete(&ProposalModel{}, "id = ?", id).Error
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Company:   u.Company,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		Company:   m.Company,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
	}
}

func proposalToModel(p domain.Proposal) (ProposalModel, error) {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return ProposalModel{}, fmt.Errorf("marshal content: %w", err)
	}
	return ProposalModel{
		ID:                 p.ID,
		UserID:             p.UserID,
		Title:              p.Title,
		ClientName:         p.ClientName,
		ClientEmail:        p.ClientEmail,
		ProjectDescription: p.ProjectDescription,
		Budget:             p.Budget,
		Deadline:           p.Deadline,
		AdditionalNotes:    p.AdditionalNotes,
		Content:            content,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}, nil
}

func proposalFromModel(m ProposalModel) (domain.Proposal, error) {
	var content domain.Content
	if len(m.Content) > 0 {
		if err := json.Unmarshal(m.Content, &content); err != nil {
			return domain.Proposal{}, fmt.Errorf("unmarshal content: %w", err)
		}
	}
	return domain.Proposal{
		ID:                 m.ID,
		UserID:             m.UserID,
		Title:              m.Title,
		ClientName:         m.ClientName,
		ClientEmail:        m.ClientEmail,
		ProjectDescription: m.ProjectDescription,
		Budget:             m.Budget,
		Deadline:           m.Deadline,
		AdditionalNotes:    m.AdditionalNotes,
		Content:            content,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}
