package api

import "time"

type Status struct {
	Profile   string     `json:"profile"`
	Engine    string     `json:"engine"`
	Threshold float64    `json:"threshold"`
	Table     string     `json:"table"`
	Runs      int        `json:"runs"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastRunId string     `json:"last_run_id,omitempty"`
}

type ProfileSummary struct {
	Name   string `json:"name"`
	Engine string `json:"engine"`
	Host   string `json:"host"`
}
