package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// AssignmentService exposes assignment lifecycle use cases for instructors.
type AssignmentService interface {
	ListByCourse(ctx context.Context, courseID uint, actor ActivityActor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, courseID, assignmentID uint, actor ActivityActor) (dto.AssignmentResponse, error)
	Create(ctx context.Context, courseID uint, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Update(ctx context.Context, courseID, assignmentID uint, payload dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	ChangeStatus(ctx context.Context, courseID, assignmentID uint, payload dto.AssignmentStatusRequest, actor ActivityActor) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time

	// courseLocks serializes the read-validate-write sequence of the weight
	// budget per course. Without it two concurrent creates can both observe an
	// under-budget total and together push the course past 100%. Covers a
	// single-instance deployment; a multi-instance one needs the lock at the
	// storage layer instead.
	courseLocks sync.Map
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(courses repository.CourseRepository, assignments repository.AssignmentRepository, validate *validator.Validate, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		courses:     courses,
		assignments: assignments,
		validator:   validate,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) lockCourse(courseID uint) func() {
	value, _ := s.courseLocks.LoadOrStore(courseID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ownedCourse loads the course and verifies ownership. A course owned by
// someone else is reported as not found rather than forbidden.
func (s *assignmentService) ownedCourse(ctx context.Context, courseID uint, actor ActivityActor) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}

	if !course.OwnedBy(actor.ID) {
		return models.Course{}, ErrCourseNotFound
	}

	return course, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID uint, actor ActivityActor) ([]dto.AssignmentResponse, error) {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, courseID, assignmentID uint, actor ActivityActor) (dto.AssignmentResponse, error) {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Create validates ownership, payload, title uniqueness and the weight budget,
// in that order, then persists a draft assignment.
func (s *assignmentService) Create(ctx context.Context, courseID uint, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		CourseID:               courseID,
		Title:                  strings.TrimSpace(payload.Title),
		Description:            strings.TrimSpace(payload.Description),
		ScoreWeight:            payload.ScoreWeight,
		Instructions:           strings.TrimSpace(payload.Instructions),
		SubmissionRequirements: strings.TrimSpace(payload.SubmissionRequirements),
		LateSubmissionAllowed:  true,
		Status:                 models.AssignmentStatusDraft,
	}

	if payload.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		assignment.DueDate = dueDate
	}

	if payload.LateSubmissionAllowed != nil {
		assignment.LateSubmissionAllowed = *payload.LateSubmissionAllowed
	}

	unlock := s.lockCourse(courseID)
	defer unlock()

	duplicate, err := s.assignments.TitleExists(ctx, courseID, assignment.Title, nil)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if duplicate {
		return dto.AssignmentResponse{}, ErrDuplicateAssignmentTitle
	}

	siblings, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if err := checkWeightBudget(siblings, assignment.ScoreWeight, nil); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", courseID).Msg("assignment created")
	s.recordActivity(ctx, actor, "assignment.created", assignment.ID, map[string]interface{}{
		"course_id":    courseID,
		"score_weight": assignment.ScoreWeight,
	})

	return dto.NewAssignmentResponse(assignment), nil
}

// Update applies a partial payload. The duplicate-title check reruns only when
// the title changed; the weight budget check reruns only when the weight changed.
func (s *assignmentService) Update(ctx context.Context, courseID, assignmentID uint, payload dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	unlock := s.lockCourse(courseID)
	defer unlock()

	assignment, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	changedFields := make([]string, 0)

	if payload.Title != nil {
		title := strings.TrimSpace(*payload.Title)
		if !strings.EqualFold(title, assignment.Title) {
			duplicate, err := s.assignments.TitleExists(ctx, courseID, title, &assignment.ID)
			if err != nil {
				return dto.AssignmentResponse{}, err
			}
			if duplicate {
				return dto.AssignmentResponse{}, ErrDuplicateAssignmentTitle
			}
		}
		assignment.Title = title
		changedFields = append(changedFields, "title")
	}

	if payload.Description != nil {
		assignment.Description = strings.TrimSpace(*payload.Description)
		changedFields = append(changedFields, "description")
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		assignment.DueDate = dueDate
		changedFields = append(changedFields, "due_date")
	}

	if payload.ScoreWeight != nil && *payload.ScoreWeight != assignment.ScoreWeight {
		siblings, err := s.assignments.ListByCourse(ctx, courseID)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		if err := checkWeightBudget(siblings, *payload.ScoreWeight, &assignment.ID); err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.ScoreWeight = *payload.ScoreWeight
		changedFields = append(changedFields, "score_weight")
	}

	if payload.Instructions != nil {
		assignment.Instructions = strings.TrimSpace(*payload.Instructions)
		changedFields = append(changedFields, "instructions")
	}

	if payload.SubmissionRequirements != nil {
		assignment.SubmissionRequirements = strings.TrimSpace(*payload.SubmissionRequirements)
		changedFields = append(changedFields, "submission_requirements")
	}

	if payload.LateSubmissionAllowed != nil {
		assignment.LateSubmissionAllowed = *payload.LateSubmissionAllowed
		changedFields = append(changedFields, "late_submission_allowed")
	}

	// An empty partial payload is a no-op; skip the write so updated_at
	// stays put under retries, same as a self-transition in ChangeStatus.
	if len(changedFields) == 0 {
		return dto.NewAssignmentResponse(assignment), nil
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Strs("fields", changedFields).Msg("assignment updated")
	s.recordActivity(ctx, actor, "assignment.updated", assignment.ID, map[string]interface{}{
		"course_id": courseID,
		"fields":    changedFields,
	})

	return dto.NewAssignmentResponse(assignment), nil
}

// ChangeStatus runs the lifecycle state machine. Self-transitions succeed
// without touching the row so retries stay idempotent.
func (s *assignmentService) ChangeStatus(ctx context.Context, courseID, assignmentID uint, payload dto.AssignmentStatusRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	requested := models.AssignmentStatus(payload.Status)
	changed, err := applyStatusTransition(&assignment, requested, s.now())
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !changed {
		return dto.NewAssignmentResponse(assignment), nil
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Str("status", string(assignment.Status)).
		Msg("assignment status changed")

	action := EventAssignmentPublished
	if assignment.Status == models.AssignmentStatusClosed {
		action = EventAssignmentClosed
	}
	s.recordActivity(ctx, actor, action, assignment.ID, map[string]interface{}{
		"course_id": courseID,
		"status":    string(assignment.Status),
	})
	if s.events != nil {
		s.events.Publish(ctx, Event{
			Type:     action,
			CourseID: courseID,
			EntityID: assignment.ID,
			ActorID:  actor.ID,
			Payload: map[string]interface{}{
				"title":  assignment.Title,
				"status": string(assignment.Status),
			},
		})
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) recordActivity(ctx context.Context, actor ActivityActor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
