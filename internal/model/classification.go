package model

// ConfidenceBucket is the coarse tier a numeric confidence falls into,
// per that label's thresholds.
type ConfidenceBucket string

const (
	BucketHigh   ConfidenceBucket = "high"
	BucketMedium ConfidenceBucket = "medium"
	BucketLow    ConfidenceBucket = "low"
)

// Source identifies which evidence stream produced a classification.
type Source string

const (
	SourceBiography  Source = "biography"
	SourceDocContext Source = "document_context"
	SourceCombined   Source = "biography+document_context"
	SourceDefault    Source = "default"
	SourceLLM        Source = "llm"
)

// Classification is one derived role label for an entity, with its
// confidence and a human-readable evidence trail.
type Classification struct {
	LabelID          string           `json:"type"`
	Category         string           `json:"category"`
	DisplayLabel     string           `json:"label"`
	Confidence       float64          `json:"confidence"`
	ConfidenceBucket ConfidenceBucket `json:"confidence_bucket"`
	Source           Source           `json:"source"`
	Evidence         string           `json:"evidence"`
	MatchedKeywords  []string         `json:"matched_keywords,omitempty"`
	DocumentCount    int              `json:"document_count,omitempty"`
	DocumentTypes    []string         `json:"document_types,omitempty"`
}

// EntityResult holds the final merged classification list for one entity.
type EntityResult struct {
	EntityID        string           `json:"entity_id"`
	Kind            EntityKind       `json:"entity_type"`
	CanonicalName   string           `json:"canonical_name"`
	Classifications []Classification `json:"classifications"`
}
