package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/caselens/entity-cli/internal/model"
)

// Registry is the immutable lookup structure built from the taxonomy and
// rule files. Safe for concurrent readers.
type Registry struct {
	labels  map[string]model.TaxonomyEntry
	byKind  map[model.EntityKind][]string
	rules   map[string]model.Rule
	unruled int
}

// NewRegistry validates the taxonomy against the rule set and builds the
// lookup structures. Rule keywords are lower-cased here, once.
func NewRegistry(categories map[string][]model.TaxonomyEntry, rules map[string]model.Rule) (*Registry, error) {
	reg := &Registry{
		labels: make(map[string]model.TaxonomyEntry),
		byKind: make(map[model.EntityKind][]string),
		rules:  make(map[string]model.Rule, len(rules)),
	}

	known := map[model.EntityKind]bool{
		model.KindPerson:       true,
		model.KindLocation:     true,
		model.KindOrganization: true,
	}

	for category, entries := range categories {
		for _, e := range entries {
			if e.LabelID == "" {
				return nil, eris.Errorf("taxonomy: entry in category %q has no label id", category)
			}
			if _, dup := reg.labels[e.LabelID]; dup {
				return nil, eris.Errorf("taxonomy: duplicate label %q", e.LabelID)
			}
			if len(e.AppliesTo) == 0 {
				return nil, eris.Errorf("taxonomy: label %q applies to no entity kind", e.LabelID)
			}
			for _, k := range e.AppliesTo {
				if !known[k] {
					return nil, eris.Errorf("taxonomy: label %q applies to unknown kind %q", e.LabelID, k)
				}
			}
			e.Category = category
			reg.labels[e.LabelID] = e
			for _, k := range e.AppliesTo {
				reg.byKind[k] = append(reg.byKind[k], e.LabelID)
			}
		}
	}

	// A rule for a label the taxonomy doesn't define is a configuration
	// error, not a data-quality issue.
	var orphans []string
	for labelID, rule := range rules {
		if _, ok := reg.labels[labelID]; !ok {
			orphans = append(orphans, labelID)
			continue
		}
		if err := validateThresholds(labelID, rule.Thresholds); err != nil {
			return nil, err
		}
		reg.rules[labelID] = lowerRule(rule)
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		return nil, eris.Errorf("taxonomy: rules reference unknown labels: %s", strings.Join(orphans, ", "))
	}

	for labelID := range reg.labels {
		if _, ok := reg.rules[labelID]; !ok {
			reg.unruled++
		}
	}

	// Deterministic per-kind ordering: most specific (lowest priority
	// value) first, label id as the final tie-break.
	for k := range reg.byKind {
		ids := reg.byKind[k]
		sort.Slice(ids, func(i, j int) bool {
			a, b := reg.labels[ids[i]], reg.labels[ids[j]]
			if a.Priority != b.Priority {
				return a.Priority < b.Priority
			}
			return a.LabelID < b.LabelID
		})
	}

	return reg, nil
}

func validateThresholds(labelID string, t model.Thresholds) error {
	for name, v := range map[string]float64{"high": t.High, "medium": t.Medium, "low": t.Low} {
		if v < 0 || v > 1 {
			return eris.Errorf("taxonomy: rule %q threshold %s=%v out of [0,1]", labelID, name, v)
		}
	}
	if t.Low > t.Medium || t.Medium > t.High {
		return eris.Errorf("taxonomy: rule %q thresholds not ascending (low=%v medium=%v high=%v)",
			labelID, t.Low, t.Medium, t.High)
	}
	return nil
}

func lowerRule(r model.Rule) model.Rule {
	r.Keywords = lowerAll(r.Keywords)
	r.ContextKeywords = lowerAll(r.ContextKeywords)
	r.Exclusions = lowerAll(r.Exclusions)
	return r
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// LabelInfo returns the taxonomy entry for a label id.
func (r *Registry) LabelInfo(labelID string) (model.TaxonomyEntry, bool) {
	e, ok := r.labels[labelID]
	return e, ok
}

// LabelsForKind returns the label ids applicable to a kind, ordered by
// ascending priority.
func (r *Registry) LabelsForKind(k model.EntityKind) []string {
	return r.byKind[k]
}

// Rule returns the keyword rule for a label id, if one exists.
func (r *Registry) Rule(labelID string) (model.Rule, bool) {
	rule, ok := r.rules[labelID]
	return rule, ok
}

// Priority returns the sort priority for a label id. Unknown labels sort
// last.
func (r *Registry) Priority(labelID string) int {
	if e, ok := r.labels[labelID]; ok {
		return e.Priority
	}
	return int(^uint(0) >> 1)
}

// Labels returns all label ids, sorted.
func (r *Registry) Labels() []string {
	ids := make([]string, 0, len(r.labels))
	for id := range r.labels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnruledLabels returns the label ids that have no rule and therefore can
// never be derived. Sorted for stable reporting.
func (r *Registry) UnruledLabels() []string {
	var ids []string
	for id := range r.labels {
		if _, ok := r.rules[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Describe returns a one-line summary for validate output.
func (r *Registry) Describe() string {
	return fmt.Sprintf("%d labels, %d rules, %d labels without rules",
		len(r.labels), len(r.rules), r.unruled)
}
