package service

import (
	"math"
	"strings"
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// applyStatusTransition mutates the assignment according to the lifecycle table:
//
//	draft -> published  (publish readiness required)
//	published -> closed
//	x -> x              (idempotent no-op, timestamps untouched)
//
// It returns whether the assignment changed; callers skip persistence on a
// no-op so updated_at stays stable under retries.
func applyStatusTransition(assignment *models.Assignment, requested models.AssignmentStatus, now time.Time) (bool, error) {
	current := assignment.Status

	if current == requested {
		return false, nil
	}

	switch {
	case current == models.AssignmentStatusDraft && requested == models.AssignmentStatusPublished:
		if err := checkPublishReadiness(*assignment); err != nil {
			return false, err
		}
		if assignment.PublishedAt == nil {
			publishedAt := now
			assignment.PublishedAt = &publishedAt
		}
		assignment.Status = models.AssignmentStatusPublished
		return true, nil

	case current == models.AssignmentStatusPublished && requested == models.AssignmentStatusClosed:
		closedAt := now
		assignment.ClosedAt = &closedAt
		assignment.Status = models.AssignmentStatusClosed
		return true, nil

	default:
		return false, &InvalidTransitionError{From: current, To: requested}
	}
}

// checkPublishReadiness verifies every field a published assignment must carry.
// The score weight finiteness check guards against corrupt rows.
func checkPublishReadiness(assignment models.Assignment) error {
	var missing []string

	if strings.TrimSpace(assignment.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(assignment.Description) == "" {
		missing = append(missing, "description")
	}
	if assignment.DueDate.IsZero() {
		missing = append(missing, "due_date")
	}
	if strings.TrimSpace(assignment.Instructions) == "" {
		missing = append(missing, "instructions")
	}
	if strings.TrimSpace(assignment.SubmissionRequirements) == "" {
		missing = append(missing, "submission_requirements")
	}
	if math.IsNaN(assignment.ScoreWeight) || math.IsInf(assignment.ScoreWeight, 0) {
		missing = append(missing, "score_weight")
	}

	if len(missing) > 0 {
		return &PublishRequirementsIncompleteError{Missing: missing}
	}

	return nil
}
