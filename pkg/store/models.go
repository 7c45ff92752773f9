package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Company   string
	IsAdmin   bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type ProposalModel struct {
	ID                 string `gorm:"primaryKey"`
	UserID             string `gorm:"not null;index"`
	Title              string `gorm:"not null"`
	ClientName         string `gorm:"not null"`
	ClientEmail        string
	ProjectDescription string `gorm:"not null"`
	Budget             string
	Deadline           string
	AdditionalNotes    string
	Content            datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt          time.Time      `gorm:"not null;index"`
	UpdatedAt          time.Time      `gorm:"not null"`
}
