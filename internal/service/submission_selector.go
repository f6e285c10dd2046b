package service

import "github.com/noah-isme/campus-go-api/internal/models"

// LatestSubmission picks the authoritative submission among all rows a learner
// accumulated for one assignment. Rows are ordered by their effective timestamp
// (updated_at, falling back to submitted_at); on identical timestamps the row
// appearing last in input order wins. Callers should not rely on the tie order
// beyond it being deterministic.
func LatestSubmission(submissions []models.Submission) (models.Submission, bool) {
	if len(submissions) == 0 {
		return models.Submission{}, false
	}

	best := submissions[0]
	for _, candidate := range submissions[1:] {
		if !candidate.EffectiveTimestamp().Before(best.EffectiveTimestamp()) {
			best = candidate
		}
	}

	return best, true
}
