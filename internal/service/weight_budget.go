package service

import "github.com/noah-isme/campus-go-api/internal/models"

// weightBudgetHundredths is the course-wide budget expressed in integer
// hundredths of a percent. All comparisons run on hundredths; rounding at the
// conversion boundary absorbs residual float error from upstream decimal
// parsing, so 33.33+33.33+33.34 lands on exactly 10000.
const weightBudgetHundredths = int64(100 * 100)

// checkWeightBudget validates that adding candidateWeight to the course's
// existing assignment weights stays within the budget. The assignment being
// edited, if any, is excluded so in-place weight updates validate against the
// remaining siblings only. Callers must pass a freshly loaded assignment list.
func checkWeightBudget(existing []models.Assignment, candidateWeight float64, excludeID *uint) error {
	var current int64
	for _, assignment := range existing {
		if excludeID != nil && assignment.ID == *excludeID {
			continue
		}
		current += assignment.ScoreWeightHundredths()
	}

	attempted := current + models.WeightHundredths(candidateWeight)
	if attempted > weightBudgetHundredths {
		return &BudgetExceededError{
			CurrentTotal:   hundredthsToPercent(current),
			AttemptedTotal: hundredthsToPercent(attempted),
			Limit:          WeightBudgetLimit,
		}
	}

	return nil
}

func hundredthsToPercent(hundredths int64) float64 {
	return float64(hundredths) / 100
}
