package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// GradingService encapsulates the instructor grading workflow.
type GradingService interface {
	Grade(ctx context.Context, courseID, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type gradingService struct {
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(courses repository.CourseRepository, submissions repository.SubmissionRepository, validate *validator.Validate, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) GradingService {
	return &gradingService{
		courses:     courses,
		submissions: submissions,
		validator:   validate,
		activity:    activity,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, courseID, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	if !payload.RequireResubmission && payload.Score == nil {
		return dto.SubmissionResponse{}, ErrScoreRequired
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if submission.Assignment.CourseID != courseID {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrCourseNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !course.OwnedBy(actor.ID) {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	now := s.now()

	if payload.RequireResubmission {
		submission.Status = models.SubmissionStatusResubmissionRequired
		submission.Score = nil
		if feedback != "" && feedback != submission.Feedback {
			submission.Feedback = feedback
			submission.FeedbackUpdatedAt = &now
		}
	} else {
		alreadyGraded := submission.IsGraded() &&
			submission.Score != nil &&
			math.Abs(*submission.Score-*payload.Score) < 1e-6 &&
			submission.Feedback == feedback
		if alreadyGraded {
			span.SetAttributes(attribute.Bool("grading.idempotent", true))
			return dto.NewSubmissionResponse(submission), nil
		}

		score := *payload.Score
		submission.Score = &score
		submission.Status = models.SubmissionStatusGraded
		gradedAt := now
		submission.GradedAt = &gradedAt
		if feedback != submission.Feedback {
			submission.Feedback = feedback
			submission.FeedbackUpdatedAt = &now
		}
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	if s.activity != nil {
		id := submission.ID
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     EventSubmissionGraded,
			EntityType: "submission",
			EntityID:   &id,
			Metadata: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"learner_id":    submission.LearnerID,
				"status":        string(submission.Status),
			},
		})
	}

	if s.events != nil {
		s.events.Publish(ctx, Event{
			Type:     EventSubmissionGraded,
			CourseID: courseID,
			EntityID: submission.ID,
			ActorID:  actor.ID,
			Payload: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"learner_id":    submission.LearnerID,
				"status":        string(submission.Status),
			},
		})
	}

	span.SetAttributes(attribute.String("grading.status", string(submission.Status)))

	return dto.NewSubmissionResponse(submission), nil
}
