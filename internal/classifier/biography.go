// Package classifier derives role labels for entities from biography
// text and from the kinds of documents they appear in, and reconciles
// the two evidence streams into one ranked list per entity.
package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/caselens/entity-cli/internal/config"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/scorer"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

// Biography scores an entity's biography text against every ruled label
// applicable to its kind.
type Biography struct {
	reg    *taxonomy.Registry
	engine *scorer.Engine
	cfg    config.ClassifyConfig
}

// NewBiography creates a biography classifier over the given registry.
func NewBiography(reg *taxonomy.Registry, cfg config.ClassifyConfig) *Biography {
	return &Biography{
		reg:    reg,
		engine: scorer.NewEngine(reg),
		cfg:    cfg,
	}
}

// Classify returns one record per label that scores at or above its low
// threshold. An entity without biography text yields nothing.
func (b *Biography) Classify(e model.Entity) []model.Classification {
	if strings.TrimSpace(e.Biography) == "" {
		return nil
	}

	var out []model.Classification
	for _, labelID := range b.reg.LabelsForKind(e.Kind) {
		rule, ok := b.reg.Rule(labelID)
		if !ok {
			continue
		}
		score, matched := b.engine.Score(e.Biography, labelID, true)
		bucket, ok := rule.Thresholds.Bucket(score)
		if !ok {
			continue
		}

		info, _ := b.reg.LabelInfo(labelID)
		out = append(out, model.Classification{
			LabelID:          labelID,
			Category:         info.Category,
			DisplayLabel:     info.DisplayLabel,
			Confidence:       score,
			ConfidenceBucket: bucket,
			Source:           model.SourceBiography,
			Evidence:         evidenceSnippet(e.Biography, matched, b.cfg.EvidenceWindow),
			MatchedKeywords:  matched,
		})
	}
	return out
}

// evidenceSnippet extracts a window of the original-case text centered
// on the earliest occurrence of any matched keyword, ellipsized on the
// sides that were clipped.
func evidenceSnippet(text string, matched []string, window int) string {
	if window <= 0 {
		window = 150
	}
	lower := strings.ToLower(text)

	earliest := -1
	for _, kw := range matched {
		if idx := strings.Index(lower, kw); idx >= 0 && (earliest == -1 || idx < earliest) {
			earliest = idx
		}
	}
	if earliest == -1 {
		earliest = 0
	}

	// earliest is a byte offset into lower, whose byte layout can differ
	// from text (some code points change width under ToLower). ToLower
	// maps rune to rune, so the rune index carries over to text.
	runes := []rune(text)
	center := utf8.RuneCountInString(lower[:earliest])
	if center > len(runes) {
		center = len(runes)
	}

	start := center - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}
