package domain

import "time"

// AdminEmail identifies the bootstrap administrator account. Administrator
// capability is decided by email comparison, not by the stored flag.
const AdminEmail = "admin@gmail.com"

type SortOrder string

const (
	SortNewest       SortOrder = "newest"
	SortOldest       SortOrder = "oldest"
	SortAlphabetical SortOrder = "alphabetical"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Company   string    `json:"company,omitempty"`
	IsAdmin   bool      `json:"isAdmin,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdministrator is the authoritative admin check. It intentionally ignores
// the IsAdmin flag and compares the email literal, matching the stored
// bootstrap identity.
func (u User) IsAdministrator() bool {
	return u.Email == AdminEmail
}

// Draft holds the intake fields collected by the wizard. Title, ClientName
// and ProjectDescription are required for a persisted proposal; the rest are
// free-form and optional. Deadline is an ISO date string (YYYY-MM-DD).
type Draft struct {
	Title              string `json:"title"`
	ClientName         string `json:"clientName"`
	ClientEmail        string `json:"clientEmail,omitempty"`
	ProjectDescription string `json:"projectDescription"`
	Budget             string `json:"budget,omitempty"`
	Deadline           string `json:"deadline,omitempty"`
	AdditionalNotes    string `json:"additionalNotes,omitempty"`
}

// Content is the generated document: five markdown-flavored prose sections.
type Content struct {
	Introduction string `json:"introduction"`
	ProjectScope string `json:"projectScope"`
	Timeline     string `json:"timeline"`
	Pricing      string `json:"pricing"`
	Conclusion   string `json:"conclusion"`
}

type Proposal struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Title              string    `json:"title"`
	ClientName         string    `json:"clientName"`
	ClientEmail        string    `json:"clientEmail,omitempty"`
	ProjectDescription string    `json:"projectDescription"`
	Budget             string    `json:"budget,omitempty"`
	Deadline           string    `json:"deadline,omitempty"`
	AdditionalNotes    string    `json:"additionalNotes,omitempty"`
	Content            Content   `json:"content"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Draft returns the intake fields of a persisted proposal.
func (p Proposal) Draft() Draft {
	return Draft{
		Title:              p.Title,
		ClientName:         p.ClientName,
		ClientEmail:        p.ClientEmail,
		ProjectDescription: p.ProjectDescription,
		Budget:             p.Budget,
		Deadline:           p.Deadline,
		AdditionalNotes:    p.AdditionalNotes,
	}
}

// ParseSortOrder maps a query value to a sort order, defaulting to newest.
func ParseSortOrder(value string) SortOrder {
	switch SortOrder(value) {
	case SortOldest:
		return SortOldest
	case SortAlphabetical:
		return SortAlphabetical
	default:
		return SortNewest
	}
}
