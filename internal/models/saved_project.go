package models

import "time"

// SavedProject links a user to a project they bookmarked.
// The composite primary key makes (UserID, ProjectID) unique.
type SavedProject struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	ProjectID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
}
