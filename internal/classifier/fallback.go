package classifier

import (
	"fmt"

	"github.com/caselens/entity-cli/internal/config"
	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

// Fallback assigns the generic peripheral label to documented entities
// that earned no specific classification. It is strictly a last resort:
// it never supplements a non-empty merged list.
type Fallback struct {
	reg        *taxonomy.Registry
	membership *docindex.Membership
	cfg        config.ClassifyConfig
}

// NewFallback creates a fallback assigner.
func NewFallback(reg *taxonomy.Registry, membership *docindex.Membership, cfg config.ClassifyConfig) *Fallback {
	return &Fallback{reg: reg, membership: membership, cfg: cfg}
}

// Assign returns the peripheral record for an entity, or nil when the
// taxonomy defines no applicable peripheral label or the entity has no
// resolvable document membership. An unlabeled entity is a valid
// terminal state.
func (f *Fallback) Assign(e model.Entity) *model.Classification {
	info, ok := f.reg.LabelInfo(f.cfg.FallbackLabel)
	if !ok || !info.Applies(e.Kind) {
		return nil
	}

	docIDs := f.membership.Resolve(e)
	if len(docIDs) == 0 {
		return nil
	}

	noun := "documents"
	if len(docIDs) == 1 {
		noun = "document"
	}
	return &model.Classification{
		LabelID:          info.LabelID,
		Category:         info.Category,
		DisplayLabel:     info.DisplayLabel,
		Confidence:       f.cfg.FallbackConfidence,
		ConfidenceBucket: model.BucketLow,
		Source:           model.SourceDefault,
		Evidence:         fmt.Sprintf("Appears in %d %s; no specific role could be identified.", len(docIDs), noun),
		DocumentCount:    len(docIDs),
	}
}
