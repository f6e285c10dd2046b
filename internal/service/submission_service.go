package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// SubmissionService exposes the learner-facing submission workflow.
type SubmissionService interface {
	Submit(ctx context.Context, learnerID, assignmentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	ListMine(ctx context.Context, learnerID, assignmentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		validator:   validate,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit appends a new submission row. Resubmissions accumulate rows; the
// grading side always reads the latest one.
func (s *submissionService) Submit(ctx context.Context, learnerID, assignmentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return dto.SubmissionResponse{}, ErrAssignmentNotOpen
	}

	enrollment, err := s.enrollments.GetByLearnerAndCourse(ctx, learnerID, assignment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrEnrollmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !enrollment.IsActive() {
		return dto.SubmissionResponse{}, ErrEnrollmentNotFound
	}

	now := s.now()
	late := assignment.IsPastDue(now)
	if late && !assignment.LateSubmissionAllowed {
		return dto.SubmissionResponse{}, ErrLateSubmissionNotAllowed
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		LearnerID:    learnerID,
		Content:      strings.TrimSpace(s.sanitizer.Sanitize(payload.Content)),
		Status:       models.SubmissionStatusSubmitted,
		Late:         late,
		SubmittedAt:  now,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignmentID).
		Bool("late", late).
		Msg("submission received")

	if s.events != nil {
		s.events.Publish(ctx, Event{
			Type:     EventSubmissionReceived,
			CourseID: assignment.CourseID,
			EntityID: submission.ID,
			ActorID:  learnerID,
			Payload: map[string]interface{}{
				"assignment_id": assignmentID,
				"late":          late,
			},
		})
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListMine(ctx context.Context, learnerID, assignmentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		AssignmentID: &assignmentID,
		LearnerID:    &learnerID,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}

	return responses, nil
}
