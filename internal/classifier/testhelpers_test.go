package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caselens/entity-cli/internal/config"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

func testConfig() config.ClassifyConfig {
	return config.ClassifyConfig{
		Workers:            1,
		EvidenceWindow:     150,
		ExcerptLength:      100,
		DocConfidenceCap:   0.8,
		CorroborationBoost: 0.1,
		BoostedCap:         0.9,
		FallbackLabel:      "peripheral_figure",
		FallbackConfidence: 0.3,
	}
}

func testRegistry(t *testing.T) *taxonomy.Registry {
	t.Helper()

	person := []model.EntityKind{model.KindPerson}
	personOrg := []model.EntityKind{model.KindPerson, model.KindOrganization}
	all := []model.EntityKind{model.KindPerson, model.KindOrganization, model.KindLocation}

	categories := map[string][]model.TaxonomyEntry{
		"legal": {
			{LabelID: "witness", DisplayLabel: "Witness", Priority: 1, AppliesTo: person},
			{LabelID: "legal_professional", DisplayLabel: "Legal Professional", Priority: 2, AppliesTo: person},
			{LabelID: "plaintiff", DisplayLabel: "Plaintiff", Priority: 2, AppliesTo: person},
		},
		"travel": {
			{LabelID: "frequent_traveler", DisplayLabel: "Frequent Traveler", Priority: 3, AppliesTo: personOrg},
		},
		"social": {
			{LabelID: "social_contact", DisplayLabel: "Social Contact", Priority: 4, AppliesTo: personOrg},
		},
		"general": {
			{LabelID: "peripheral_figure", DisplayLabel: "Peripheral Figure", Priority: 99, AppliesTo: all},
		},
	}
	// plaintiff and peripheral_figure deliberately carry no rule.
	rules := map[string]model.Rule{
		"witness": {
			Keywords:        []string{"witness", "testified"},
			ContextKeywords: []string{"court", "deposition"},
			Exclusions:      []string{"expert witness fee"},
			Thresholds:      model.Thresholds{High: 0.7, Medium: 0.5, Low: 0.3},
		},
		"legal_professional": {
			Keywords:   []string{"attorney", "lawyer", "counsel"},
			Thresholds: model.Thresholds{High: 0.7, Medium: 0.5, Low: 0.3},
		},
		"frequent_traveler": {
			Keywords:   []string{"flight", "traveled frequently"},
			Thresholds: model.Thresholds{High: 0.8, Medium: 0.5, Low: 0.2},
		},
		"social_contact": {
			Keywords:   []string{"close contact"},
			Thresholds: model.Thresholds{High: 0.8, Medium: 0.5, Low: 0.2},
		},
	}

	reg, err := taxonomy.NewRegistry(categories, rules)
	require.NoError(t, err)
	return reg
}
