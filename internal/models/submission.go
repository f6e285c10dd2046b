package models

import "time"

// SubmissionStatus represents the review state of a submission.
type SubmissionStatus string

const (
	// SubmissionStatusSubmitted indicates the work awaits instructor review.
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded SubmissionStatus = "graded"
	// SubmissionStatusResubmissionRequired indicates the instructor requested another attempt.
	SubmissionStatusResubmissionRequired SubmissionStatus = "resubmission_required"
)

// Submission represents one attempt by a learner against an assignment.
// A learner may accumulate multiple rows per assignment across resubmissions.
type Submission struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	AssignmentID      uint             `gorm:"not null;index" json:"assignment_id"`
	LearnerID         uint             `gorm:"not null;index" json:"learner_id"`
	Content           string           `gorm:"type:text" json:"content"`
	Status            SubmissionStatus `gorm:"size:32;not null" json:"status"`
	Late              bool             `gorm:"not null;default:false" json:"late"`
	Score             *float64         `json:"score"`
	Feedback          string           `gorm:"type:text" json:"feedback"`
	SubmittedAt       time.Time        `gorm:"not null" json:"submitted_at"`
	GradedAt          *time.Time       `json:"graded_at"`
	FeedbackUpdatedAt *time.Time       `json:"feedback_updated_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Assignment        Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

// IsGraded reports whether the submission carries a final score.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// PendingFeedback reports whether the submission still awaits instructor action.
func (s Submission) PendingFeedback() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusResubmissionRequired
}

// EffectiveTimestamp returns the timestamp used to order submissions,
// preferring the last update and falling back to the submit time.
func (s Submission) EffectiveTimestamp() time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.SubmittedAt
}

// FeedbackTimestamp returns the moment the latest feedback event occurred,
// preferring feedback_updated_at, then graded_at, then submitted_at.
func (s Submission) FeedbackTimestamp() time.Time {
	if s.FeedbackUpdatedAt != nil {
		return *s.FeedbackUpdatedAt
	}
	if s.GradedAt != nil {
		return *s.GradedAt
	}
	return s.SubmittedAt
}
