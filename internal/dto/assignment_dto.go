package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
// Only the title and weight are mandatory up front; the remaining fields are
// checked at publish time.
type AssignmentCreateRequest struct {
	Title                  string  `json:"title" validate:"required,min=3"`
	Description            string  `json:"description" validate:"omitempty,min=10"`
	DueDate                string  `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ScoreWeight            float64 `json:"score_weight" validate:"gte=0,lte=100,hundredths"`
	Instructions           string  `json:"instructions"`
	SubmissionRequirements string  `json:"submission_requirements"`
	LateSubmissionAllowed  *bool   `json:"late_submission_allowed"`
}

// AssignmentUpdateRequest describes the payload for partially updating an assignment.
type AssignmentUpdateRequest struct {
	Title                  *string  `json:"title" validate:"omitempty,min=3"`
	Description            *string  `json:"description" validate:"omitempty,min=10"`
	DueDate                *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ScoreWeight            *float64 `json:"score_weight" validate:"omitempty,gte=0,lte=100,hundredths"`
	Instructions           *string  `json:"instructions"`
	SubmissionRequirements *string  `json:"submission_requirements"`
	LateSubmissionAllowed  *bool    `json:"late_submission_allowed"`
}

// AssignmentStatusRequest carries a requested lifecycle transition.
type AssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published closed"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                     uint       `json:"id"`
	CourseID               uint       `json:"course_id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	DueDate                time.Time  `json:"due_date"`
	ScoreWeight            float64    `json:"score_weight"`
	Instructions           string     `json:"instructions"`
	SubmissionRequirements string     `json:"submission_requirements"`
	LateSubmissionAllowed  bool       `json:"late_submission_allowed"`
	Status                 string     `json:"status"`
	PublishedAt            *time.Time `json:"published_at"`
	ClosedAt               *time.Time `json:"closed_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                     model.ID,
		CourseID:               model.CourseID,
		Title:                  model.Title,
		Description:            model.Description,
		DueDate:                model.DueDate,
		ScoreWeight:            model.ScoreWeight,
		Instructions:           model.Instructions,
		SubmissionRequirements: model.SubmissionRequirements,
		LateSubmissionAllowed:  model.LateSubmissionAllowed,
		Status:                 string(model.Status),
		PublishedAt:            model.PublishedAt,
		ClosedAt:               model.ClosedAt,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
