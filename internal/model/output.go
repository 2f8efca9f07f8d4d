package model

import "time"

// Metadata describes one completed classification run.
type Metadata struct {
	GeneratedAt            time.Time `json:"generated_at"`
	TotalEntities          int       `json:"total_entities"`
	ClassifiedEntities     int       `json:"classified_entities"`
	ClassificationCoverage float64   `json:"classification_coverage"`
	Method                 string    `json:"method"`
	Version                string    `json:"version"`
}

// KindStats counts classified entities within one kind.
type KindStats struct {
	Total      int `json:"total"`
	Classified int `json:"classified"`
}

// Statistics are the run-level aggregates accumulated by the batch pass.
type Statistics struct {
	TotalEntities      int                      `json:"total_entities"`
	ClassifiedEntities int                      `json:"classified_entities"`
	ByType             map[EntityKind]KindStats `json:"by_type"`
	BySource           map[Source]int           `json:"by_source"`
	ByConfidence       map[ConfidenceBucket]int `json:"by_confidence"`
}

// NewStatistics returns Statistics with all maps allocated.
func NewStatistics() Statistics {
	return Statistics{
		ByType:       make(map[EntityKind]KindStats),
		BySource:     make(map[Source]int),
		ByConfidence: make(map[ConfidenceBucket]int),
	}
}

// Output is the single structure written at the end of a fully completed
// batch pass. It fully replaces any prior output.
type Output struct {
	Metadata   Metadata                `json:"metadata"`
	Statistics Statistics              `json:"statistics"`
	Entities   map[string]EntityResult `json:"entities"`
}
