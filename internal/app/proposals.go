package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"proposalai/internal/util"
	"proposalai/pkg/domain"
	"proposalai/pkg/proposal"
)

// ValidateDraft checks the fields a persisted proposal must always carry.
func ValidateDraft(draft domain.Draft) error {
	if strings.TrimSpace(draft.Title) == "" ||
		strings.TrimSpace(draft.ClientName) == "" ||
		strings.TrimSpace(draft.ProjectDescription) == "" {
		return ErrMissingRequiredFields
	}
	return nil
}

// CreateProposal validates the draft, generates the document sections, and
// persists a new proposal owned by the given user.
func (a *App) CreateProposal(owner domain.User, draft domain.Draft) (domain.Proposal, error) {
	if err := ValidateDraft(draft); err != nil {
		return domain.Proposal{}, err
	}
	now := time.Now().UTC()
	p := domain.Proposal{
		ID:                 util.NewID(),
		UserID:             owner.ID,
		Title:              draft.Title,
		ClientName:         draft.ClientName,
		ClientEmail:        draft.ClientEmail,
		ProjectDescription: draft.ProjectDescription,
		Budget:             draft.Budget,
		Deadline:           draft.Deadline,
		AdditionalNotes:    draft.AdditionalNotes,
		Content:            proposal.Generate(draft),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := a.store.SaveProposal(p); err != nil {
		return domain.Proposal{}, fmt.Errorf("save proposal: %w", err)
	}
	return p, nil
}

// ListProposals returns the proposals visible to the viewer: every record for
// the administrator, owned records otherwise. Search matches title or client
// name case-insensitively; results are sorted by the given order.
func (a *App) ListProposals(viewer domain.User, search string, order domain.SortOrder) ([]domain.Proposal, error) {
	var (
		proposals []domain.Proposal
		err       error
	)
	if viewer.IsAdministrator() {
		proposals, err = a.store.ListProposals()
	} else {
		proposals, err = a.store.ListProposalsByOwner(viewer.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	if search != "" {
		needle := strings.ToLower(search)
		filtered := proposals[:0]
		for _, p := range proposals {
			if strings.Contains(strings.ToLower(p.Title), needle) ||
				strings.Contains(strings.ToLower(p.ClientName), needle) {
				filtered = append(filtered, p)
			}
		}
		proposals = filtered
	}
	switch order {
	case domain.SortOldest:
		sort.SliceStable(proposals, func(i, j int) bool {
			return proposals[i].CreatedAt.Before(proposals[j].CreatedAt)
		})
	case domain.SortAlphabetical:
		sort.SliceStable(proposals, func(i, j int) bool {
			return proposals[i].Title < proposals[j].Title
		})
	default:
		sort.SliceStable(proposals, func(i, j int) bool {
			return proposals[i].CreatedAt.After(proposals[j].CreatedAt)
		})
	}
	return proposals, nil
}

// GetProposal returns a proposal if the viewer is its owner or the
// administrator. The record is never returned on denial.
func (a *App) GetProposal(viewer domain.User, id string) (domain.Proposal, error) {
	p, ok, err := a.store.GetProposal(id)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("fetch proposal: %w", err)
	}
	if !ok {
		return domain.Proposal{}, ErrNotFound
	}
	if !canAccess(viewer, p) {
		return domain.Proposal{}, ErrAccessDenied
	}
	return p, nil
}

// ProposalUpdate is the wholesale edit payload: intake fields plus the five
// content sections.
type ProposalUpdate struct {
	Draft   domain.Draft   `json:"draft"`
	Content domain.Content `json:"content"`
}

// UpdateProposal rewrites every editable field of the proposal, preserving
// id, owner, and creation time, and advancing UpdatedAt strictly.
func (a *App) UpdateProposal(viewer domain.User, id string, update ProposalUpdate) (domain.Proposal, error) {
	existing, err := a.GetProposal(viewer, id)
	if err != nil {
		return domain.Proposal{}, err
	}
	if err := ValidateDraft(update.Draft); err != nil {
		return domain.Proposal{}, err
	}
	now := time.Now().UTC()
	if !now.After(existing.UpdatedAt) {
		// Clocks can be coarse; UpdatedAt must still strictly advance.
		now = existing.UpdatedAt.Add(time.Nanosecond)
	}
	updated := domain.Proposal{
		ID:                 existing.ID,
		UserID:             existing.UserID,
		Title:              update.Draft.Title,
		ClientName:         update.Draft.ClientName,
		ClientEmail:        update.Draft.ClientEmail,
		ProjectDescription: update.Draft.ProjectDescription,
		Budget:             update.Draft.Budget,
		Deadline:           update.Draft.Deadline,
		AdditionalNotes:    update.Draft.AdditionalNotes,
		Content:            update.Content,
		CreatedAt:          existing.CreatedAt,
		UpdatedAt:          now,
	}
	if err := a.store.SaveProposal(updated); err != nil {
		return domain.Proposal{}, fmt.Errorf("save proposal: %w", err)
	}
	return updated, nil
}

// RegenerateContent rebuilds the five sections from the stored intake fields.
func (a *App) RegenerateContent(viewer domain.User, id string) (domain.Proposal, error) {
	existing, err := a.GetProposal(viewer, id)
	if err != nil {
		return domain.Proposal{}, err
	}
	return a.UpdateProposal(viewer, id, ProposalUpdate{
		Draft:   existing.Draft(),
		Content: proposal.Generate(existing.Draft()),
	})
}

// DeleteProposal removes a proposal. Deleting an absent id is a no-op; access
// is checked only when the record exists.
func (a *App) DeleteProposal(viewer domain.User, id string) error {
	p, ok, err := a.store.GetProposal(id)
	if err != nil {
		return fmt.Errorf("fetch proposal: %w", err)
	}
	if !ok {
		return nil
	}
	if !canAccess(viewer, p) {
		return ErrAccessDenied
	}
	if err := a.store.DeleteProposal(id); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	return nil
}

func canAccess(viewer domain.User, p domain.Proposal) bool {
	return viewer.IsAdministrator() || viewer.ID == p.UserID
}
