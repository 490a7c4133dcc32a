package dto

import "time"

// SweepReport summarises a pass over all active tenants.
type SweepReport struct {
	Job       string            `json:"job"`
	Tenants   int               `json:"tenants"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Failures  map[string]string `json:"failures,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}
