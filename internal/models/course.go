package models

import "time"

// CourseStatus represents the lifecycle state of a course.
type CourseStatus string

const (
	// CourseStatusDraft indicates the course is not yet visible to learners.
	CourseStatusDraft CourseStatus = "draft"
	// CourseStatusPublished indicates the course is open for enrollment.
	CourseStatusPublished CourseStatus = "published"
	// CourseStatusArchived indicates the course is retired.
	CourseStatusArchived CourseStatus = "archived"
)

// Course groups assignments under a single owning instructor.
type Course struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	InstructorID uint         `gorm:"not null;index" json:"instructor_id"`
	Status       CourseStatus `gorm:"size:16;not null;default:draft" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Assignments  []Assignment `json:"assignments,omitempty"`
}

// OwnedBy reports whether the given instructor owns this course.
func (c Course) OwnedBy(instructorID uint) bool {
	return c.InstructorID == instructorID
}
