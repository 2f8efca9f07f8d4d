package classifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caselens/entity-cli/internal/config"
	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

// docTypeCandidates translates coarse document types into candidate
// labels. The table is fixed: document evidence can only ever suggest
// these labels, and each candidate is still intersected with the
// taxonomy's kind applicability before scoring.
var docTypeCandidates = map[string][]string{
	"court_filing":      {"witness", "legal_professional", "plaintiff", "defendant"},
	"deposition":        {"witness", "legal_professional", "plaintiff", "defendant"},
	"legal_brief":       {"legal_professional", "plaintiff", "defendant"},
	"flight_log":        {"frequent_traveler"},
	"contact_list":      {"social_contact"},
	"contact_directory": {"social_contact"},
	"financial_record":  {"financial_associate"},
	"property_record":   {"property_owner"},
	"news_article":      {"public_figure"},
}

// DocContext infers labels for an entity from the kinds of documents it
// appears in.
type DocContext struct {
	reg        *taxonomy.Registry
	types      *docindex.TypeIndex
	membership *docindex.Membership
	cfg        config.ClassifyConfig
}

// NewDocContext creates a document-context classifier.
func NewDocContext(reg *taxonomy.Registry, types *docindex.TypeIndex, membership *docindex.Membership, cfg config.ClassifyConfig) *DocContext {
	return &DocContext{reg: reg, types: types, membership: membership, cfg: cfg}
}

// Classify resolves the entity's document set and scores candidate
// labels by how much of that set supports them. Confidence is capped
// below what biography evidence can reach; corroboration across two or
// more distinct document types earns a small boost under a higher cap.
func (d *DocContext) Classify(e model.Entity) []model.Classification {
	docIDs := d.membership.Resolve(e)
	if len(docIDs) == 0 {
		return nil
	}
	total := len(docIDs)

	counts := make(map[string]int)
	contributing := make(map[string]map[string]bool)
	for _, id := range docIDs {
		docType, ok := d.types.TypeOf(id)
		if !ok {
			// No type tag means no signal.
			continue
		}
		for _, labelID := range docTypeCandidates[docType] {
			info, ok := d.reg.LabelInfo(labelID)
			if !ok || !info.Applies(e.Kind) {
				continue
			}
			counts[labelID]++
			if contributing[labelID] == nil {
				contributing[labelID] = make(map[string]bool)
			}
			contributing[labelID][docType] = true
		}
	}

	// One record per label, keeping the maximum-confidence candidate.
	best := make(map[string]model.Classification)
	for labelID, count := range counts {
		rule, ok := d.reg.Rule(labelID)
		if !ok {
			// Without thresholds the label cannot be bucketed or emitted.
			continue
		}

		confidence := float64(count) / float64(total)
		if confidence > d.cfg.DocConfidenceCap {
			confidence = d.cfg.DocConfidenceCap
		}
		docTypes := sortedKeys(contributing[labelID])
		if len(docTypes) >= 2 {
			confidence += d.cfg.CorroborationBoost
			if confidence > d.cfg.BoostedCap {
				confidence = d.cfg.BoostedCap
			}
		}

		bucket, ok := rule.Thresholds.Bucket(confidence)
		if !ok {
			continue
		}

		info, _ := d.reg.LabelInfo(labelID)
		record := model.Classification{
			LabelID:          labelID,
			Category:         info.Category,
			DisplayLabel:     info.DisplayLabel,
			Confidence:       confidence,
			ConfidenceBucket: bucket,
			Source:           model.SourceDocContext,
			Evidence:         docEvidence(count, total, docTypes),
			DocumentCount:    count,
			DocumentTypes:    docTypes,
		}
		if prev, ok := best[labelID]; !ok || record.Confidence > prev.Confidence {
			best[labelID] = record
		}
	}

	out := make([]model.Classification, 0, len(best))
	for _, record := range best {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].LabelID < out[j].LabelID
	})
	return out
}

func docEvidence(count, total int, docTypes []string) string {
	noun := "documents"
	if count == 1 {
		noun = "document"
	}
	return fmt.Sprintf("Appears in %d %s (of %d total) classified as %s.",
		count, noun, total, strings.Join(docTypes, ", "))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
