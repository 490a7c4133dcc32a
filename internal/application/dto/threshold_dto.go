package dto

import (
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
)

// UpdateThresholdsRequest is a partial update; omitted thresholds keep their current value.
type UpdateThresholdsRequest struct {
	Excellent *float64 `json:"excellent,omitempty" validate:"omitempty,percent"`
	Good      *float64 `json:"good,omitempty" validate:"omitempty,percent"`
	Fair      *float64 `json:"fair,omitempty" validate:"omitempty,percent"`
	Poor      *float64 `json:"poor,omitempty" validate:"omitempty,percent"`
	UpdatedBy string   `json:"updated_by" validate:"required"`
}

// Apply merges the request onto current.
func (r *UpdateThresholdsRequest) Apply(current models.RatingThresholds) models.RatingThresholds {
	if r.Excellent != nil {
		current.Excellent = *r.Excellent
	}
	if r.Good != nil {
		current.Good = *r.Good
	}
	if r.Fair != nil {
		current.Fair = *r.Fair
	}
	if r.Poor != nil {
		current.Poor = *r.Poor
	}
	return current
}

// ThresholdsResponse reports the thresholds in force.
type ThresholdsResponse struct {
	models.RatingThresholds
	IsDefault bool       `json:"is_default"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
