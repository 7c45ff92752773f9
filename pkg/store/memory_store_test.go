package store

import (
	"testing"
	"time"

	"proposalai/pkg/domain"
)

func TestMemoryStoreUserEmailIndex(t *testing.T) {
	s := NewMemoryStore()
	u := domain.User{ID: "u-1", Name: "Jo", Email: "jo@example.com", Password: "Secret99"}
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if ok, _ := s.HasUserEmail("jo@example.com"); !ok {
		t.Fatalf("HasUserEmail = false after save")
	}
	got, ok, _ := s.GetUserByEmail("jo@example.com")
	if !ok || got.ID != "u-1" {
		t.Fatalf("GetUserByEmail = %+v, %v", got, ok)
	}

	// Changing the email must release the old index entry.
	u.Email = "joanna@example.com"
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("SaveUser update: %v", err)
	}
	if ok, _ := s.HasUserEmail("jo@example.com"); ok {
		t.Fatalf("old email still resolvable after update")
	}
	if ok, _ := s.HasUserEmail("joanna@example.com"); !ok {
		t.Fatalf("new email not resolvable")
	}
}

func TestMemoryStoreDeleteUserKeepsProposals(t *testing.T) {
	s := NewMemoryStore()
	_ = s.SaveUser(domain.User{ID: "u-1", Email: "jo@example.com"})
	_ = s.SaveProposal(domain.Proposal{ID: "p-1", UserID: "u-1", Title: "A"})

	if err := s.DeleteUser("u-1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok, _ := s.GetUserByID("u-1"); ok {
		t.Fatalf("user still present after delete")
	}
	if ok, _ := s.HasUserEmail("jo@example.com"); ok {
		t.Fatalf("email index not cleared")
	}
	// Orphaned proposals stay.
	if _, ok, _ := s.GetProposal("p-1"); !ok {
		t.Fatalf("owned proposal removed with user")
	}
}

func TestMemoryStoreProposalOrderAndOwnerFilter(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	for i, id := range []string{"p-1", "p-2", "p-3"} {
		owner := "u-1"
		if id == "p-2" {
			owner = "u-2"
		}
		_ = s.SaveProposal(domain.Proposal{ID: id, UserID: owner, CreatedAt: now.Add(time.Duration(i) * time.Second)})
	}

	all, err := s.ListProposals()
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(all) != 3 || all[0].ID != "p-1" || all[2].ID != "p-3" {
		t.Fatalf("ListProposals order = %+v", ids(all))
	}

	owned, err := s.ListProposalsByOwner("u-1")
	if err != nil {
		t.Fatalf("ListProposalsByOwner: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != "p-1" || owned[1].ID != "p-3" {
		t.Fatalf("ListProposalsByOwner = %+v", ids(owned))
	}
}

func TestMemoryStoreDeleteProposalRemovesExactlyOne(t *testing.T) {
	s := NewMemoryStore()
	for _, id := range []string{"p-1", "p-2", "p-3"} {
		_ = s.SaveProposal(domain.Proposal{ID: id, UserID: "u-1"})
	}
	if err := s.DeleteProposal("p-2"); err != nil {
		t.Fatalf("DeleteProposal: %v", err)
	}
	rest, _ := s.ListProposals()
	if len(rest) != 2 {
		t.Fatalf("remaining = %d, want 2", len(rest))
	}
	for _, p := range rest {
		if p.ID == "p-2" {
			t.Fatalf("deleted proposal still listed")
		}
	}
	// Deleting an absent id is a no-op.
	if err := s.DeleteProposal("p-2"); err != nil {
		t.Fatalf("second DeleteProposal: %v", err)
	}
	rest, _ = s.ListProposals()
	if len(rest) != 2 {
		t.Fatalf("idempotent delete changed count to %d", len(rest))
	}
}

func ids(ps []domain.Proposal) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
