// Package wizard drives the four-step proposal creation form: Basics,
// Description, Details, Review. Steps advance only when the current step's
// required fields are present; submit runs full validation, generates the
// document, and delegates persistence to a ProposalCreator.
package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"proposalai/pkg/domain"
)

const (
	StepBasics = iota + 1
	StepDescription
	StepDetails
	StepReview
)

// ErrMissingFields is raised when a step's required fields are empty. The
// wizard stays on the current step.
var ErrMissingFields = errors.New("Please fill in all required fields in this section")

// ProposalCreator persists a finished draft. Implemented by the application
// core.
type ProposalCreator interface {
	CreateProposal(owner domain.User, draft domain.Draft) (domain.Proposal, error)
}

// Wizard tracks the form state for one proposal creation flow.
type Wizard struct {
	step    int
	draft   domain.Draft
	creator ProposalCreator
	latency time.Duration
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithSimulatedLatency inserts a cosmetic delay before generation on submit,
// so the flow feels like real document generation. Zero (the default)
// disables it; tests leave it off.
func WithSimulatedLatency(d time.Duration) Option {
	return func(w *Wizard) { w.latency = d }
}

// New starts a wizard at step 1.
func New(creator ProposalCreator, opts ...Option) *Wizard {
	w := &Wizard{step: StepBasics, creator: creator}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Step returns the current step, 1 through 4.
func (w *Wizard) Step() int {
	return w.step
}

// Draft returns the collected fields so far.
func (w *Wizard) Draft() domain.Draft {
	return w.draft
}

// SetDraft replaces the collected fields; the form binds inputs wholesale.
func (w *Wizard) SetDraft(draft domain.Draft) {
	w.draft = draft
}

// Next advances one step if the current step's validation passes. It returns
// ErrMissingFields and stays put otherwise. Calling Next on the review step
// is a no-op; there is no step beyond 4.
func (w *Wizard) Next() error {
	switch w.step {
	case StepBasics:
		if empty(w.draft.Title) || empty(w.draft.ClientName) {
			return ErrMissingFields
		}
	case StepDescription:
		if empty(w.draft.ProjectDescription) {
			return ErrMissingFields
		}
	case StepDetails:
		// budget, deadline and notes are optional; always advances
	case StepReview:
		return nil
	}
	w.step++
	return nil
}

// Back retreats one step. There is no step before 1.
func (w *Wizard) Back() {
	if w.step > StepBasics {
		w.step--
	}
}

// Submit runs the final full-form validation and persists the proposal. Only
// valid at the review step. On any failure the wizard stays at step 4 so the
// user can retry; no partial record is persisted.
func (w *Wizard) Submit(ctx context.Context, owner domain.User) (domain.Proposal, error) {
	if w.step != StepReview {
		return domain.Proposal{}, ErrMissingFields
	}
	if empty(w.draft.Title) || empty(w.draft.ClientName) || empty(w.draft.ProjectDescription) {
		return domain.Proposal{}, ErrMissingFields
	}
	if w.latency > 0 {
		select {
		case <-time.After(w.latency):
		case <-ctx.Done():
			return domain.Proposal{}, ctx.Err()
		}
	}
	return w.creator.CreateProposal(owner, w.draft)
}

func empty(s string) bool {
	return strings.TrimSpace(s) == ""
}
