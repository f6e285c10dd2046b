package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func gradedAt(t time.Time) *time.Time { return &t }

func newGradeServiceForTest(enrollments *memoryEnrollmentRepo, assignments *memoryAssignmentRepo, submissions *memorySubmissionRepo) GradeService {
	return NewGradeService(enrollments, assignments, submissions, testLogger())
}

func TestGradeServiceCourseGradesWeightedAverage(t *testing.T) {
	course := models.Course{ID: 1, Title: "Distributed Systems", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Essay", ScoreWeight: 40, Status: models.AssignmentStatusPublished, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		models.Assignment{ID: 2, CourseID: 1, Title: "Quiz", ScoreWeight: 35, Status: models.AssignmentStatusPublished, DueDate: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
		models.Assignment{ID: 3, CourseID: 1, Title: "Project", ScoreWeight: 25, Status: models.AssignmentStatusPublished, DueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	)

	submitted := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	graded := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(90), SubmittedAt: submitted, UpdatedAt: submitted, GradedAt: gradedAt(graded)},
		models.Submission{ID: 2, AssignmentID: 2, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(80), SubmittedAt: submitted, UpdatedAt: submitted, GradedAt: gradedAt(graded)},
		models.Submission{ID: 3, AssignmentID: 3, LearnerID: 7, Status: models.SubmissionStatusSubmitted, SubmittedAt: submitted, UpdatedAt: submitted},
	)
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	resp, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.NoError(t, err)

	// (90*40 + 80*35) / (40+35) = 85.333... rounded to two decimals.
	require.NotNil(t, resp.WeightedScore)
	require.InDelta(t, 85.33, *resp.WeightedScore, 1e-9)
	require.Equal(t, 2, resp.GradedCount)
	require.Equal(t, 3, resp.TotalCount)
	require.Equal(t, 1, resp.PendingFeedbackCount)
	require.Len(t, resp.Assignments, 3)
}

func TestGradeServiceUngradedCourseHasNullScore(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: 50, Status: models.AssignmentStatusPublished},
	)
	submissions := newMemorySubmissionRepo()
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	resp, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Nil(t, resp.WeightedScore)
	require.Equal(t, 0, resp.GradedCount)
	require.Equal(t, 1, resp.TotalCount)
}

func TestGradeServiceZeroScoreIsNotNull(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: 50, Status: models.AssignmentStatusPublished},
	)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(0), SubmittedAt: at, UpdatedAt: at},
	)
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	resp, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NotNil(t, resp.WeightedScore)
	require.Zero(t, *resp.WeightedScore)
	require.Equal(t, 1, resp.GradedCount)
}

func TestGradeServiceLatestSubmissionWins(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: 100, Status: models.AssignmentStatusPublished},
	)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(55), SubmittedAt: first, UpdatedAt: first},
		models.Submission{ID: 2, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(95), SubmittedAt: second, UpdatedAt: second},
	)
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	resp, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NotNil(t, resp.WeightedScore)
	require.InDelta(t, 95.0, *resp.WeightedScore, 1e-9)
	require.Equal(t, 1, resp.GradedCount)
	require.NotNil(t, resp.Assignments[0].SubmissionID)
	require.Equal(t, uint(2), *resp.Assignments[0].SubmissionID)
}

func TestGradeServiceInactiveEnrollmentRejected(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusCancelled, Course: course,
	})
	svc := newGradeServiceForTest(enrollments, newMemoryAssignmentRepo(), newMemorySubmissionRepo())

	_, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)

	_, err = svc.GetCourseGrades(context.Background(), 7, 42)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestGradeServiceAbortsOnMalformedWeight(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: math.NaN(), Status: models.AssignmentStatusPublished},
	)
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})
	svc := newGradeServiceForTest(enrollments, assignments, newMemorySubmissionRepo())

	_, err := svc.GetCourseGrades(context.Background(), 7, 1)

	var computation *ComputationError
	require.ErrorAs(t, err, &computation)
	require.Equal(t, "score_weight", computation.Field)
	require.Equal(t, uint(1), computation.AssignmentID)
}

func TestGradeServiceLatestFeedbackTieBreak(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab One", ScoreWeight: 50, Status: models.AssignmentStatusPublished, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		models.Assignment{ID: 2, CourseID: 1, Title: "Lab Two", ScoreWeight: 50, Status: models.AssignmentStatusPublished, DueDate: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
	)
	at := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	feedbackAt := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(70), Feedback: "solid start", SubmittedAt: at, UpdatedAt: at, FeedbackUpdatedAt: &feedbackAt},
		models.Submission{ID: 2, AssignmentID: 2, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(90), Feedback: "great improvement", SubmittedAt: at, UpdatedAt: at, FeedbackUpdatedAt: &feedbackAt},
	)
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	resp, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NotNil(t, resp.LatestFeedback)
	// Identical timestamps resolve deterministically to the later assignment
	// in due-date order.
	require.Equal(t, uint(2), resp.LatestFeedback.AssignmentID)
	require.Equal(t, "great improvement", resp.LatestFeedback.Feedback)
}

func TestGradeServiceFeedbackSurvivesResubmission(t *testing.T) {
	course := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: 100, Status: models.AssignmentStatusPublished},
	)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	feedbackAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	resubmitted := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusResubmissionRequired, Feedback: "needs work", SubmittedAt: first, UpdatedAt: feedbackAt, FeedbackUpdatedAt: &feedbackAt},
		models.Submission{ID: 2, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusSubmitted, SubmittedAt: resubmitted, UpdatedAt: resubmitted},
	)
	enrollments := newMemoryEnrollmentRepo(models.Enrollment{
		ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: course,
	})

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	resp, err := svc.GetCourseGrades(context.Background(), 7, 1)
	require.NoError(t, err)

	// The resubmission is authoritative for scoring, but the feedback given
	// on the superseded row is still the learner's most recent feedback.
	require.Nil(t, resp.WeightedScore)
	require.Equal(t, 0, resp.GradedCount)
	require.NotNil(t, resp.Assignments[0].SubmissionID)
	require.Equal(t, uint(2), *resp.Assignments[0].SubmissionID)
	require.NotNil(t, resp.LatestFeedback)
	require.Equal(t, "needs work", resp.LatestFeedback.Feedback)
	require.Equal(t, feedbackAt, resp.LatestFeedback.OccurredAt)

	overview, err := svc.GetOverview(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, overview.LatestFeedback)
	require.Equal(t, "needs work", overview.LatestFeedback.Feedback)
}

func TestGradeServiceOverviewRenormalizesAcrossCourses(t *testing.T) {
	courseA := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	courseB := models.Course{ID: 2, Title: "Networks", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: 50, Status: models.AssignmentStatusPublished},
		models.Assignment{ID: 2, CourseID: 2, Title: "Exam", ScoreWeight: 100, Status: models.AssignmentStatusPublished},
	)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(80), SubmittedAt: at, UpdatedAt: at},
		models.Submission{ID: 2, AssignmentID: 2, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(100), SubmittedAt: at, UpdatedAt: at},
	)
	enrolledA := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	enrolledB := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	enrollments := newMemoryEnrollmentRepo(
		models.Enrollment{ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, EnrolledAt: enrolledA, Course: courseA},
		models.Enrollment{ID: 2, LearnerID: 7, CourseID: 2, Status: models.EnrollmentStatusActive, EnrolledAt: enrolledB, Course: courseB},
	)

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	overview, err := svc.GetOverview(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, overview.ActiveCourseCount)
	require.Equal(t, 2, overview.GradedAssignmentCount)
	require.Len(t, overview.Courses, 2)

	// (80*50 + 100*100) / 150 = 93.33, not the 90 an average of course
	// averages would produce.
	require.NotNil(t, overview.AverageScore)
	require.InDelta(t, 93.33, *overview.AverageScore, 1e-9)
}

func TestGradeServiceOverviewSkipsCancelledEnrollments(t *testing.T) {
	courseA := models.Course{ID: 1, Title: "Databases", InstructorID: 10}
	courseB := models.Course{ID: 2, Title: "Networks", InstructorID: 10}
	assignments := newMemoryAssignmentRepo(
		models.Assignment{ID: 1, CourseID: 1, Title: "Lab", ScoreWeight: 50, Status: models.AssignmentStatusPublished},
		models.Assignment{ID: 2, CourseID: 2, Title: "Exam", ScoreWeight: 100, Status: models.AssignmentStatusPublished},
	)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	submissions := newMemorySubmissionRepo(
		models.Submission{ID: 1, AssignmentID: 1, LearnerID: 7, Status: models.SubmissionStatusGraded, Score: floatPtr(80), SubmittedAt: at, UpdatedAt: at},
	)
	enrollments := newMemoryEnrollmentRepo(
		models.Enrollment{ID: 1, LearnerID: 7, CourseID: 1, Status: models.EnrollmentStatusActive, Course: courseA},
		models.Enrollment{ID: 2, LearnerID: 7, CourseID: 2, Status: models.EnrollmentStatusCancelled, Course: courseB},
	)

	svc := newGradeServiceForTest(enrollments, assignments, submissions)

	overview, err := svc.GetOverview(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 1, overview.ActiveCourseCount)
	require.Len(t, overview.Courses, 1)
	require.Equal(t, uint(1), overview.Courses[0].CourseID)
}

func TestGradeServiceOverviewEmpty(t *testing.T) {
	svc := newGradeServiceForTest(newMemoryEnrollmentRepo(), newMemoryAssignmentRepo(), newMemorySubmissionRepo())

	overview, err := svc.GetOverview(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, overview.ActiveCourseCount)
	require.Nil(t, overview.AverageScore)
	require.Nil(t, overview.LatestFeedback)
	require.Empty(t, overview.Courses)
}
