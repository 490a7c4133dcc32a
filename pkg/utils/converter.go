// Package utils provides utility functions for the compliance service.
// This file contains numeric and string helpers.
package utils

import (
	"math"
	"strings"
)

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds v to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DefaultString returns defaultValue when value is blank
func DefaultString(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
