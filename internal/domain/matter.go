package domain

import "time"

// Matter is a legal case record owned by the matter directory.
type Matter struct {
	ID          string
	CaseName    string
	IndexNumber string
	Caption     string
	Status      MatterStatus
}

// UnknownMatterName names stubs created without any caption.
const UnknownMatterName = "Unknown Matter"

// ProjectMapping links one matter to one task manager project.
type ProjectMapping struct {
	MatterID    string
	ProjectID   string
	ProjectName string
	CreatedAt   time.Time
}
