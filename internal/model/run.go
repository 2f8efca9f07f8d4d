package model

import "time"

// RunStatus represents the current state of a classification run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded batch run in the run history store.
type Run struct {
	ID         string     `json:"id"`
	Status     RunStatus  `json:"status"`
	OutputPath string     `json:"output_path"`
	Result     *RunResult `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunResult summarizes a completed run for history listings.
type RunResult struct {
	TotalEntities      int     `json:"total_entities"`
	ClassifiedEntities int     `json:"classified_entities"`
	Coverage           float64 `json:"coverage"`
	Records            int     `json:"records"`
	DurationMS         int64   `json:"duration_ms"`
}
