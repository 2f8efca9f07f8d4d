package model

// EntityKind identifies which population an entity belongs to.
type EntityKind string

const (
	KindPerson       EntityKind = "person"
	KindLocation     EntityKind = "location"
	KindOrganization EntityKind = "organization"
)

// AllKinds returns every entity kind in population order.
func AllKinds() []EntityKind {
	return []EntityKind{KindPerson, KindLocation, KindOrganization}
}

// TaxonomyEntry is one classification label in the catalog.
type TaxonomyEntry struct {
	LabelID      string       `json:"type" yaml:"type"`
	Category     string       `json:"category" yaml:"category"`
	DisplayLabel string       `json:"label" yaml:"label"`
	Priority     int          `json:"priority" yaml:"priority"`
	AppliesTo    []EntityKind `json:"applies_to" yaml:"applies_to"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// Applies reports whether the label may be assigned to entities of kind k.
func (t TaxonomyEntry) Applies(k EntityKind) bool {
	for _, ak := range t.AppliesTo {
		if ak == k {
			return true
		}
	}
	return false
}

// Thresholds are the ascending score cut points for a label's confidence
// buckets. All values are in [0,1] with Low <= Medium <= High.
type Thresholds struct {
	High   float64 `json:"high" yaml:"high"`
	Medium float64 `json:"medium" yaml:"medium"`
	Low    float64 `json:"low" yaml:"low"`
}

// Bucket maps a confidence to its tier. ok is false when the confidence
// falls below the low threshold, meaning the record must be discarded
// rather than emitted.
func (t Thresholds) Bucket(confidence float64) (bucket ConfidenceBucket, ok bool) {
	switch {
	case confidence >= t.High:
		return BucketHigh, true
	case confidence >= t.Medium:
		return BucketMedium, true
	case confidence >= t.Low:
		return BucketLow, true
	default:
		return "", false
	}
}

// Rule is the keyword configuration that lets a label be derived from
// evidence. Keywords are stored lower-cased; matching is substring based.
type Rule struct {
	Keywords        []string   `json:"keywords" yaml:"keywords"`
	ContextKeywords []string   `json:"context_keywords,omitempty" yaml:"context_keywords,omitempty"`
	Exclusions      []string   `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	Thresholds      Thresholds `json:"confidence_threshold" yaml:"confidence_threshold"`
}
