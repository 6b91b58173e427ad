package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus is the visibility state of a project record.
type ProjectStatus string

const (
	ProjectStatusActive  ProjectStatus = "active"
	ProjectStatusDeleted ProjectStatus = "deleted"
)

// Project is an archived capstone paper.
// (Title, Author) is unique among active rows; deleted rows are kept for audit.
type Project struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Title      string        `gorm:"size:255;not null;uniqueIndex:idx_projects_title_author_active,where:status = 'active'" json:"title"`
	Author     string        `gorm:"size:255;not null;uniqueIndex:idx_projects_title_author_active,where:status = 'active'" json:"author"`
	Year       int           `gorm:"not null;index" json:"year"`
	Field      string        `gorm:"size:50;not null;index" json:"field"`
	FileURL    string        `gorm:"not null" json:"fileUrl"`
	UploadedBy uint          `gorm:"not null;index" json:"uploadedBy"`
	Uploader   *User         `gorm:"foreignKey:UploadedBy;constraint:OnDelete:RESTRICT" json:"-"`
	Status     ProjectStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	// IsDeleted mirrors Status for clients; it is not persisted.
	IsDeleted bool       `gorm:"-" json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Active reports whether the project is visible to listings and saves.
func (p *Project) Active() bool {
	return p.Status == ProjectStatusActive
}

// AfterFind keeps the derived IsDeleted flag in sync with Status.
func (p *Project) AfterFind(_ *gorm.DB) error {
	p.IsDeleted = p.Status == ProjectStatusDeleted
	return nil
}

// ProjectView is a project as seen by a particular requester.
type ProjectView struct {
	Project
	IsSaved bool `json:"isSaved"`
	CanEdit bool `json:"canEdit"`
}
