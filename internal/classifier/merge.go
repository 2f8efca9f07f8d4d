package classifier

import (
	"sort"
	"strings"

	"github.com/caselens/entity-cli/internal/model"
)

// PrioritySource resolves a label id to its taxonomy priority for
// tie-breaking (lower value sorts first).
type PrioritySource interface {
	Priority(labelID string) int
}

// Merge reconciles the biography-derived and document-derived lists for
// one entity into a single ranked list.
//
// A label present in only one list passes through unchanged. On overlap
// the higher-confidence record wins, its source becomes the combined
// source, and its evidence becomes the concatenation of a truncated
// biography excerpt and the document-context sentence. Evidence is
// always combined on overlap even though confidence is not averaged.
func Merge(bio, doc []model.Classification, prio PrioritySource, excerptLen int) []model.Classification {
	if excerptLen <= 0 {
		excerptLen = 100
	}

	merged := make(map[string]model.Classification, len(bio)+len(doc))
	for _, record := range bio {
		merged[record.LabelID] = record
	}
	for _, record := range doc {
		existing, ok := merged[record.LabelID]
		if !ok {
			merged[record.LabelID] = record
			continue
		}

		winner := existing
		if record.Confidence > existing.Confidence {
			winner = record
		}
		winner.Source = model.SourceCombined
		winner.Evidence = combineEvidence(existing.Evidence, record.Evidence, excerptLen)
		merged[record.LabelID] = winner
	}

	out := make([]model.Classification, 0, len(merged))
	for _, record := range merged {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		pi, pj := prio.Priority(out[i].LabelID), prio.Priority(out[j].LabelID)
		if pi != pj {
			return pi < pj
		}
		return out[i].LabelID < out[j].LabelID
	})
	return out
}

// combineEvidence joins a truncated biography excerpt with the
// document-context sentence.
func combineEvidence(bioEvidence, docEvidence string, excerptLen int) string {
	excerpt := truncate(bioEvidence, excerptLen)
	if excerpt == "" {
		return docEvidence
	}
	if docEvidence == "" {
		return excerpt
	}
	return excerpt + " | " + docEvidence
}

func truncate(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}
