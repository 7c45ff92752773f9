package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proposalai/pkg/domain"
	"proposalai/pkg/proposal"
)

const exportURLTTL = 15 * time.Minute

// PreviewProposal renders the proposal document as HTML for the viewer.
func (a *App) PreviewProposal(viewer domain.User, id string) (string, error) {
	p, err := a.GetProposal(viewer, id)
	if err != nil {
		return "", err
	}
	return proposal.RenderDocument(p), nil
}

// ExportProposal renders the proposal document to a standalone HTML file,
// uploads it to object storage, and returns a download URL. The proposal
// record itself is never modified; any failure surfaces as a notice only.
func (a *App) ExportProposal(ctx context.Context, viewer domain.User, id string) (string, error) {
	p, err := a.GetProposal(viewer, id)
	if err != nil {
		return "", err
	}
	doc := proposal.RenderDocument(p)
	key := exportKey(p)
	reader := strings.NewReader(doc)
	if err := a.objects.Put(ctx, key, reader, int64(len(doc)), "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	url, err := a.objects.PresignGet(ctx, key, exportURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	return url, nil
}

// ShareLink returns the public page address for the proposal. No dedicated
// share token is generated; the link simply points at the proposal page.
func (a *App) ShareLink(viewer domain.User, id string) (string, error) {
	if _, err := a.GetProposal(viewer, id); err != nil {
		return "", err
	}
	return a.publicBaseURL + "/proposal/" + id, nil
}

func exportKey(p domain.Proposal) string {
	name := strings.Join(strings.Fields(p.Title), "_")
	if name == "" {
		name = "proposal"
	}
	return p.ID + "/" + name + ".html"
}
