package models

import (
	"fmt"
	"math"
	"time"
)

// RatingThresholds holds the lower bounds of each rating band.
type RatingThresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
	Poor      float64 `json:"poor"`
}

// DefaultRatingThresholds returns the bands used when no regulator settings exist.
func DefaultRatingThresholds() RatingThresholds {
	return RatingThresholds{Excellent: 90, Good: 75, Fair: 60, Poor: 40}
}

// Validate requires each bound to be within [0, 100] and strictly descending.
func (t RatingThresholds) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"excellent", t.Excellent},
		{"good", t.Good},
		{"fair", t.Fair},
		{"poor", t.Poor},
	}
	for i, n := range named {
		if math.IsNaN(n.value) || n.value < 0 || n.value > 100 {
			return fmt.Errorf("%s threshold %v must be between 0 and 100", n.name, n.value)
		}
		if i > 0 && !(named[i-1].value > n.value) {
			return fmt.Errorf("%s threshold %v must be greater than %s threshold %v",
				named[i-1].name, named[i-1].value, n.name, n.value)
		}
	}
	return nil
}

// RegulatorSettings persists the rating thresholds. The row with the latest UpdatedAt is in force.
type RegulatorSettings struct {
	ID                 string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ExcellentThreshold float64   `gorm:"not null" json:"excellent_threshold"`
	GoodThreshold      float64   `gorm:"not null" json:"good_threshold"`
	FairThreshold      float64   `gorm:"not null" json:"fair_threshold"`
	PoorThreshold      float64   `gorm:"not null" json:"poor_threshold"`
	UpdatedBy          string    `gorm:"type:varchar(128)" json:"updated_by"`
	UpdatedAt          time.Time `gorm:"index" json:"updated_at"`
}

func (RegulatorSettings) TableName() string { return "regulator_settings" }

// Thresholds converts the settings row to RatingThresholds.
func (s *RegulatorSettings) Thresholds() RatingThresholds {
	return RatingThresholds{
		Excellent: s.ExcellentThreshold,
		Good:      s.GoodThreshold,
		Fair:      s.FairThreshold,
		Poor:      s.PoorThreshold,
	}
}
