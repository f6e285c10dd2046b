package dto

import "time"

// AssignmentGradeEntry is one row of the per-assignment grade breakdown.
type AssignmentGradeEntry struct {
	AssignmentID     uint       `json:"assignment_id"`
	Title            string     `json:"title"`
	AssignmentStatus string     `json:"assignment_status"`
	ScoreWeight      float64    `json:"score_weight"`
	SubmissionID     *uint      `json:"submission_id"`
	SubmissionStatus string     `json:"submission_status,omitempty"`
	Score            *float64   `json:"score"`
	Feedback         string     `json:"feedback,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	GradedAt         *time.Time `json:"graded_at"`
	Late             bool       `json:"late"`
}

// FeedbackEventResponse describes the most recent feedback a learner received.
type FeedbackEventResponse struct {
	CourseID        uint      `json:"course_id"`
	AssignmentID    uint      `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	Feedback        string    `json:"feedback"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// CourseGradesResponse aggregates a learner's grade state within one course.
// WeightedScore is null until at least one weighted assignment is graded;
// it is never conflated with a literal zero score.
type CourseGradesResponse struct {
	CourseID             uint                   `json:"course_id"`
	CourseTitle          string                 `json:"course_title"`
	WeightedScore        *float64               `json:"weighted_score"`
	GradedCount          int                    `json:"graded_count"`
	TotalCount           int                    `json:"total_count"`
	PendingFeedbackCount int                    `json:"pending_feedback_count"`
	LateSubmissionCount  int                    `json:"late_submission_count"`
	Assignments          []AssignmentGradeEntry `json:"assignments"`
	LatestFeedback       *FeedbackEventResponse `json:"latest_feedback"`
}

// CourseGradeSummary is the per-course slice of the overview.
type CourseGradeSummary struct {
	CourseID             uint     `json:"course_id"`
	CourseTitle          string   `json:"course_title"`
	WeightedScore        *float64 `json:"weighted_score"`
	GradedCount          int      `json:"graded_count"`
	TotalCount           int      `json:"total_count"`
	PendingFeedbackCount int      `json:"pending_feedback_count"`
	LateSubmissionCount  int      `json:"late_submission_count"`
}

// GradesOverviewResponse aggregates grade state across all active enrollments.
// AverageScore is weight-normalized across every course's graded contributions,
// not an average of per-course averages.
type GradesOverviewResponse struct {
	ActiveCourseCount     int                    `json:"active_course_count"`
	GradedAssignmentCount int                    `json:"graded_assignment_count"`
	PendingFeedbackCount  int                    `json:"pending_feedback_count"`
	LateSubmissionCount   int                    `json:"late_submission_count"`
	AverageScore          *float64               `json:"average_score"`
	Courses               []CourseGradeSummary   `json:"courses"`
	LatestFeedback        *FeedbackEventResponse `json:"latest_feedback"`
}
