// Package proposal turns wizard intake fields into the five prose sections of
// a proposal document. Generation is template-based and fully deterministic.
package proposal

import (
	"fmt"
	"time"

	"proposalai/pkg/domain"
)

// Generate derives the document sections from the intake fields. Calling it
// twice with the same draft yields identical output.
func Generate(draft domain.Draft) domain.Content {
	return domain.Content{
		Introduction: fmt.Sprintf(
			"Dear %s,\n\nThank you for the opportunity to submit this proposal for your %s project. "+
				"Based on our understanding of your requirements, we are confident that we can deliver "+
				"a solution that meets your needs and exceeds your expectations.",
			draft.ClientName, draft.Title),
		ProjectScope: fmt.Sprintf(
			"## Project Scope\n\n%s\n\nOur team will work closely with you to ensure that all "+
				"requirements are met and that the final deliverable aligns with your vision.",
			draft.ProjectDescription),
		Timeline: "## Timeline\n\n" + timelineLead(draft.Deadline) +
			"\n\nThe project will be divided into the following phases:\n\n" +
			"1. Discovery and Planning\n" +
			"2. Design and Development\n" +
			"3. Testing and Refinement\n" +
			"4. Deployment and Launch\n" +
			"5. Post-Launch Support",
		Pricing: "## Pricing\n\n" + pricingLead(draft.Budget) + "\n\n" +
			"- Discovery and Planning: $X,XXX\n" +
			"- Design and Development: $X,XXX\n" +
			"- Testing and Refinement: $X,XXX\n" +
			"- Deployment and Launch: $X,XXX\n" +
			"- Post-Launch Support: $X,XXX\n\n" +
			"Total: $XX,XXX",
		Conclusion: "## Conclusion\n\nWe are excited about the opportunity to work with you on this " +
			"project. We believe that our expertise and experience make us the ideal partner for your " +
			"needs.\n\nPlease feel free to reach out if you have any questions or would like to discuss " +
			"this proposal further.\n\nSincerely,\n[Your Name]\n[Your Company]",
	}
}

func timelineLead(deadline string) string {
	if deadline == "" {
		return "We will work with you to establish a timeline that meets your needs."
	}
	return fmt.Sprintf("We will complete this project by %s.", FormatDate(deadline))
}

func pricingLead(budget string) string {
	if budget == "" {
		return "We propose the following pricing structure:"
	}
	return fmt.Sprintf("Based on your budget range of %s, we propose the following pricing structure:", budget)
}

// FormatDate renders an ISO date (YYYY-MM-DD) as M/D/YYYY, the en-US short
// date form used throughout the documents. A value that does not parse is
// returned verbatim.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
