package models

import "time"

// Learner represents a user that enrolls in courses and submits work.
// Account provisioning and identity live outside this service; the row
// exists for referential integrity and seeding.
type Learner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
