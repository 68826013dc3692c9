package api

import "time"

type Outcome struct {
	Database      string  `json:"database"`
	CurrentSizeMB float64 `json:"current_size_mb"`
	MaxSizeMB     float64 `json:"max_size_mb"`
	TargetSizeMB  float64 `json:"target_size_mb"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	Error         string  `json:"error,omitempty"`
}

type RunReport struct {
	Id         string    `json:"id"`
	Profile    string    `json:"profile"`
	Engine     string    `json:"engine"`
	Threshold  float64   `json:"threshold"`
	Table      string    `json:"table"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Failed     bool      `json:"failed"`
	Remediated int       `json:"remediated"`
	Outcomes   []Outcome `json:"outcomes"`
}
