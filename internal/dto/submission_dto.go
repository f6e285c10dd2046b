package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// SubmissionCreateRequest is the payload a learner sends when submitting work.
type SubmissionCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=20000"`
}

// GradeSubmissionRequest is the payload an instructor sends when reviewing a submission.
// Score is required unless a resubmission is requested.
type GradeSubmissionRequest struct {
	Score               *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	Feedback            string   `json:"feedback" validate:"max=8000"`
	RequireResubmission bool     `json:"require_resubmission"`
}

// SubmissionResponse is the serialized representation of a submission.
type SubmissionResponse struct {
	ID                uint       `json:"id"`
	AssignmentID      uint       `json:"assignment_id"`
	LearnerID         uint       `json:"learner_id"`
	Content           string     `json:"content"`
	Status            string     `json:"status"`
	Late              bool       `json:"late"`
	Score             *float64   `json:"score"`
	Feedback          string     `json:"feedback"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	GradedAt          *time.Time `json:"graded_at"`
	FeedbackUpdatedAt *time.Time `json:"feedback_updated_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                model.ID,
		AssignmentID:      model.AssignmentID,
		LearnerID:         model.LearnerID,
		Content:           model.Content,
		Status:            string(model.Status),
		Late:              model.Late,
		Score:             model.Score,
		Feedback:          model.Feedback,
		SubmittedAt:       model.SubmittedAt,
		GradedAt:          model.GradedAt,
		FeedbackUpdatedAt: model.FeedbackUpdatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
