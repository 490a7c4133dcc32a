package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/compliance/internal/domain/models"
)

func TestClassify_Boundaries(t *testing.T) {
	th := models.DefaultRatingThresholds()
	tests := []struct {
		score float64
		want  models.Rating
	}{
		{100, models.RatingExcellent},
		{90, models.RatingExcellent},
		{89.99, models.RatingGood},
		{75, models.RatingGood},
		{74.99, models.RatingFair},
		{60, models.RatingFair},
		{59.99, models.RatingPoor},
		{40, models.RatingPoor},
		{39.99, models.RatingCritical},
		{0, models.RatingCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score, th), "score %v", tt.score)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	rank := map[models.Rating]int{
		models.RatingCritical:  0,
		models.RatingPoor:      1,
		models.RatingFair:      2,
		models.RatingGood:      3,
		models.RatingExcellent: 4,
	}
	th := models.RatingThresholds{Excellent: 85, Good: 70, Fair: 55, Poor: 30}
	prev := -1
	for s := 0.0; s <= 100; s += 0.25 {
		r := rank[Classify(s, th)]
		assert.GreaterOrEqual(t, r, prev, "score %v", s)
		prev = r
	}
}
