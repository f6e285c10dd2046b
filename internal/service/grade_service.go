package service

import (
	"context"
	"errors"
	"math"
	"strings"

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

// GradeService computes weighted grades for a learner, per course and across
// all active enrollments. Read-only; every call re-reads current state.
type GradeService interface {
	GetCourseGrades(ctx context.Context, learnerID, courseID uint) (dto.CourseGradesResponse, error)
	GetOverview(ctx context.Context, learnerID uint) (dto.GradesOverviewResponse, error)
}

type gradeService struct {
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradeService builds the grade aggregation service.
func NewGradeService(enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) GradeService {
	return &gradeService{
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "grade_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/grade"),
	}
}

// courseGradeResult keeps the raw accumulators alongside the response so the
// overview can renormalize across courses instead of averaging averages.
type courseGradeResult struct {
	response       dto.CourseGradesResponse
	weightedSum    float64 // sum of score * weight hundredths
	gradedWeight   int64   // sum of weight hundredths of graded assignments
	latestFeedback *dto.FeedbackEventResponse
}

func (s *gradeService) GetCourseGrades(ctx context.Context, learnerID, courseID uint) (dto.CourseGradesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grades.course")
	span.SetAttributes(
		attribute.Int64("grades.learner_id", int64(learnerID)),
		attribute.Int64("grades.course_id", int64(courseID)),
	)
	defer span.End()

	enrollment, err := s.activeEnrollment(ctx, learnerID, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrollment_not_found")
		return dto.CourseGradesResponse{}, err
	}

	result, err := s.computeCourse(ctx, enrollment.Course, learnerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "computation_failed")
		return dto.CourseGradesResponse{}, err
	}

	return result.response, nil
}

func (s *gradeService) GetOverview(ctx context.Context, learnerID uint) (dto.GradesOverviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grades.overview")
	span.SetAttributes(attribute.Int64("grades.learner_id", int64(learnerID)))
	defer span.End()

	enrollments, err := s.enrollments.ListActiveByLearner(ctx, learnerID)
	if err != nil {
		span.RecordError(err)
		return dto.GradesOverviewResponse{}, err
	}

	overview := dto.GradesOverviewResponse{
		ActiveCourseCount: len(enrollments),
		Courses:           make([]dto.CourseGradeSummary, 0, len(enrollments)),
	}

	var weightedSum float64
	var gradedWeight int64
	var latest *dto.FeedbackEventResponse

	for _, enrollment := range enrollments {
		result, err := s.computeCourse(ctx, enrollment.Course, learnerID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "computation_failed")
			return dto.GradesOverviewResponse{}, err
		}

		course := result.response
		overview.GradedAssignmentCount += course.GradedCount
		overview.PendingFeedbackCount += course.PendingFeedbackCount
		overview.LateSubmissionCount += course.LateSubmissionCount
		overview.Courses = append(overview.Courses, dto.CourseGradeSummary{
			CourseID:             course.CourseID,
			CourseTitle:          course.CourseTitle,
			WeightedScore:        course.WeightedScore,
			GradedCount:          course.GradedCount,
			TotalCount:           course.TotalCount,
			PendingFeedbackCount: course.PendingFeedbackCount,
			LateSubmissionCount:  course.LateSubmissionCount,
		})

		weightedSum += result.weightedSum
		gradedWeight += result.gradedWeight

		if result.latestFeedback != nil {
			if latest == nil || !result.latestFeedback.OccurredAt.Before(latest.OccurredAt) {
				latest = result.latestFeedback
			}
		}
	}

	if gradedWeight > 0 {
		average := roundScore(weightedSum / float64(gradedWeight))
		overview.AverageScore = &average
	}
	overview.LatestFeedback = latest

	span.SetAttributes(attribute.Int("grades.active_courses", overview.ActiveCourseCount))

	return overview, nil
}

func (s *gradeService) activeEnrollment(ctx context.Context, learnerID, courseID uint) (models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}

	if !enrollment.IsActive() {
		return models.Enrollment{}, ErrEnrollmentNotFound
	}

	return enrollment, nil
}

func (s *gradeService) computeCourse(ctx context.Context, course models.Course, learnerID uint) (courseGradeResult, error) {
	assignments, err := s.assignments.ListByCourse(ctx, course.ID)
	if err != nil {
		return courseGradeResult{}, err
	}

	var submissions []models.Submission
	if len(assignments) > 0 {
		ids := make([]uint, 0, len(assignments))
		for _, assignment := range assignments {
			ids = append(ids, assignment.ID)
		}
		submissions, err = s.submissions.List(ctx, repository.SubmissionFilter{
			LearnerID:     &learnerID,
			AssignmentIDs: ids,
		})
		if err != nil {
			return courseGradeResult{}, err
		}
	}

	result, err := aggregateCourseGrades(course, assignments, submissions)
	if err != nil {
		var computation *ComputationError
		if errors.As(err, &computation) {
			s.logger.Error().
				Uint("course_id", computation.CourseID).
				Uint("assignment_id", computation.AssignmentID).
				Str("field", computation.Field).
				Msg("grade computation aborted on malformed data")
		}
		return courseGradeResult{}, err
	}

	return result, nil
}

// aggregateCourseGrades is the pure aggregation core: for every assignment it
// selects the authoritative submission, accumulates counts, and folds graded
// weighted scores into a weight-normalized sum. Malformed numerics abort the
// whole computation rather than being defaulted away.
func aggregateCourseGrades(course models.Course, assignments []models.Assignment, submissions []models.Submission) (courseGradeResult, error) {
	byAssignment := make(map[uint][]models.Submission, len(assignments))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = append(byAssignment[submission.AssignmentID], submission)
	}

	result := courseGradeResult{
		response: dto.CourseGradesResponse{
			CourseID:    course.ID,
			CourseTitle: course.Title,
			TotalCount:  len(assignments),
			Assignments: make([]dto.AssignmentGradeEntry, 0, len(assignments)),
		},
	}

	for _, assignment := range assignments {
		if math.IsNaN(assignment.ScoreWeight) || math.IsInf(assignment.ScoreWeight, 0) {
			return courseGradeResult{}, &ComputationError{
				CourseID:     course.ID,
				AssignmentID: assignment.ID,
				Field:        "score_weight",
				Reason:       "is not finite",
			}
		}

		entry := dto.AssignmentGradeEntry{
			AssignmentID:     assignment.ID,
			Title:            assignment.Title,
			AssignmentStatus: string(assignment.Status),
			ScoreWeight:      assignment.ScoreWeight,
		}

		latest, ok := LatestSubmission(byAssignment[assignment.ID])
		if ok {
			if latest.Score != nil && (math.IsNaN(*latest.Score) || math.IsInf(*latest.Score, 0)) {
				return courseGradeResult{}, &ComputationError{
					CourseID:     course.ID,
					AssignmentID: assignment.ID,
					Field:        "score",
					Reason:       "is not finite",
				}
			}

			submissionID := latest.ID
			entry.SubmissionID = &submissionID
			entry.SubmissionStatus = string(latest.Status)
			entry.Score = latest.Score
			entry.Feedback = latest.Feedback
			submittedAt := latest.SubmittedAt
			entry.SubmittedAt = &submittedAt
			entry.GradedAt = latest.GradedAt
			entry.Late = latest.Late

			if latest.Score != nil {
				result.response.GradedCount++
				if weight := assignment.ScoreWeightHundredths(); weight > 0 {
					result.gradedWeight += weight
					result.weightedSum += *latest.Score * float64(weight)
				}
			}
			if latest.PendingFeedback() {
				result.response.PendingFeedbackCount++
			}
			if latest.Late {
				result.response.LateSubmissionCount++
			}
		}

		// Feedback events are folded over every submission, not only the
		// authoritative one. A resubmission supersedes the graded row for
		// scoring, but the feedback already given on that row remains the
		// most recent feedback the learner received.
		for _, submission := range byAssignment[assignment.ID] {
			if strings.TrimSpace(submission.Feedback) == "" {
				continue
			}
			occurredAt := submission.FeedbackTimestamp()
			if result.latestFeedback == nil || !occurredAt.Before(result.latestFeedback.OccurredAt) {
				result.latestFeedback = &dto.FeedbackEventResponse{
					CourseID:        course.ID,
					AssignmentID:    assignment.ID,
					AssignmentTitle: assignment.Title,
					Feedback:        submission.Feedback,
					OccurredAt:      occurredAt,
				}
			}
		}

		result.response.Assignments = append(result.response.Assignments, entry)
	}

	if result.gradedWeight > 0 {
		score := roundScore(result.weightedSum / float64(result.gradedWeight))
		result.response.WeightedScore = &score
	}
	result.response.LatestFeedback = result.latestFeedback

	return result, nil
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
