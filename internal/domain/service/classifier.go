package service

import "github.com/turtacn/compliance/internal/domain/models"

// Classify maps an overall score to its rating band. Each bound is inclusive.
func Classify(score float64, t models.RatingThresholds) models.Rating {
	switch {
	case score >= t.Excellent:
		return models.RatingExcellent
	case score >= t.Good:
		return models.RatingGood
	case score >= t.Fair:
		return models.RatingFair
	case score >= t.Poor:
		return models.RatingPoor
	default:
		return models.RatingCritical
	}
}
