package models

import (
	"math"
	"time"
)

// AssignmentStatus represents the lifecycle state of an assignment.
type AssignmentStatus string

const (
	// AssignmentStatusDraft is the initial state; the assignment is invisible to learners.
	AssignmentStatusDraft AssignmentStatus = "draft"
	// AssignmentStatusPublished indicates learners can view and submit.
	AssignmentStatusPublished AssignmentStatus = "published"
	// AssignmentStatusClosed is terminal; no further submissions or reopening.
	AssignmentStatusClosed AssignmentStatus = "closed"
)

// ValidAssignmentStatus reports whether the value is a known lifecycle state.
func ValidAssignmentStatus(status AssignmentStatus) bool {
	switch status {
	case AssignmentStatusDraft, AssignmentStatusPublished, AssignmentStatusClosed:
		return true
	}
	return false
}

// Assignment represents a gradable unit of work within a course.
type Assignment struct {
	ID                     uint             `gorm:"primaryKey" json:"id"`
	CourseID               uint             `gorm:"not null;index" json:"course_id"`
	Title                  string           `gorm:"size:255;not null" json:"title"`
	Description            string           `gorm:"type:text" json:"description"`
	DueDate                time.Time        `json:"due_date"`
	ScoreWeight            float64          `gorm:"type:numeric(5,2);not null;default:0" json:"score_weight"`
	Instructions           string           `gorm:"type:text" json:"instructions"`
	SubmissionRequirements string           `gorm:"type:text" json:"submission_requirements"`
	LateSubmissionAllowed  bool             `gorm:"not null;default:true" json:"late_submission_allowed"`
	Status                 AssignmentStatus `gorm:"size:16;not null;default:draft" json:"status"`
	PublishedAt            *time.Time       `json:"published_at"`
	ClosedAt               *time.Time       `json:"closed_at"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
	Submissions            []Submission     `json:"submissions,omitempty"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// ScoreWeightHundredths converts the weight percentage to integer hundredths.
// Budget arithmetic runs on hundredths so 33.33+33.33+33.34 sums to exactly 10000.
func (a Assignment) ScoreWeightHundredths() int64 {
	return WeightHundredths(a.ScoreWeight)
}

// WeightHundredths rounds a percentage weight to integer hundredths.
func WeightHundredths(weight float64) int64 {
	return int64(math.Round(weight * 100))
}
