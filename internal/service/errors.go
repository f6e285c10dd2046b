package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// ErrCourseNotFound indicates the course does not exist or is not visible to the caller.
var ErrCourseNotFound = errors.New("course not found")

// ErrAssignmentNotFound indicates the assignment does not exist within the course.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrEnrollmentNotFound indicates the learner has no active enrollment for the course.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrDuplicateAssignmentTitle indicates the course already has an assignment with that title.
var ErrDuplicateAssignmentTitle = errors.New("assignment title already used in this course")

// ErrAssignmentNotOpen indicates the assignment does not accept submissions in its current state.
var ErrAssignmentNotOpen = errors.New("assignment is not open for submissions")

// ErrLateSubmissionNotAllowed indicates the deadline passed and the assignment forbids late work.
var ErrLateSubmissionNotAllowed = errors.New("late submissions are not allowed for this assignment")

// ErrScoreRequired indicates a grading request without a score or resubmission flag.
var ErrScoreRequired = errors.New("score is required unless a resubmission is requested")

// WeightBudgetLimit is the maximum total score weight per course, in percent.
const WeightBudgetLimit = 100.0

// BudgetExceededError reports a score weight budget violation. Totals are in
// percent, rounded to hundredths.
type BudgetExceededError struct {
	CurrentTotal   float64
	AttemptedTotal float64
	Limit          float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("score weight budget exceeded: current total %.2f plus candidate makes %.2f, limit %.2f",
		e.CurrentTotal, e.AttemptedTotal, e.Limit)
}

// InvalidTransitionError reports a lifecycle transition outside the allowed table.
type InvalidTransitionError struct {
	From models.AssignmentStatus
	To   models.AssignmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid assignment status transition from %q to %q", e.From, e.To)
}

// PublishRequirementsIncompleteError reports a draft that is not ready to publish.
// Distinct from InvalidTransitionError: the transition itself is legal, the
// assignment is just not ready yet.
type PublishRequirementsIncompleteError struct {
	Missing []string
}

func (e *PublishRequirementsIncompleteError) Error() string {
	return fmt.Sprintf("publish requirements incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// ComputationError reports malformed numeric data encountered during grade
// aggregation. Treated as a server-side defect, never silently defaulted.
type ComputationError struct {
	CourseID     uint
	AssignmentID uint
	Field        string
	Reason       string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("grade computation failed for course %d assignment %d: %s %s",
		e.CourseID, e.AssignmentID, e.Field, e.Reason)
}
