package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

const (
	// EnrollmentStatusActive indicates the learner participates in the course.
	EnrollmentStatusActive EnrollmentStatus = "active"
	// EnrollmentStatusCancelled indicates the learner left the course.
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Enrollment links a learner to a course. Grade aggregation only
// considers active enrollments.
type Enrollment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	LearnerID   uint             `gorm:"not null;index:idx_enrollment_pair" json:"learner_id"`
	CourseID    uint             `gorm:"not null;index:idx_enrollment_pair" json:"course_id"`
	Status      EnrollmentStatus `gorm:"size:16;not null;default:active" json:"status"`
	EnrolledAt  time.Time        `json:"enrolled_at"`
	CancelledAt *time.Time       `json:"cancelled_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Course      Course           `json:"course"`
}

// IsActive reports whether the enrollment still counts toward grading.
func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}
