package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caselens/entity-cli/internal/config"
	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

func testConfig() config.ClassifyConfig {
	return config.ClassifyConfig{
		Workers:            2,
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

	categories := map[string][]model.TaxonomyEntry{
		"legal": {
			{LabelID: "witness", DisplayLabel: "Witness", Priority: 1, AppliesTo: []model.EntityKind{model.KindPerson}},
		},
		"travel": {
			{LabelID: "frequent_traveler", DisplayLabel: "Frequent Traveler", Priority: 3, AppliesTo: []model.EntityKind{model.KindPerson, model.KindOrganization}},
		},
		"general": {
			{LabelID: "peripheral_figure", DisplayLabel: "Peripheral Figure", Priority: 99, AppliesTo: []model.EntityKind{model.KindPerson, model.KindOrganization, model.KindLocation}},
		},
	}
	rules := map[string]model.Rule{
		"witness": {
			Keywords:        []string{"witness", "testified"},
			ContextKeywords: []string{"court"},
			Thresholds:      model.Thresholds{High: 0.7, Medium: 0.5, Low: 0.3},
		},
		"frequent_traveler": {
			Keywords:   []string{"flight"},
			Thresholds: model.Thresholds{High: 0.8, Medium: 0.5, Low: 0.2},
		},
	}
	reg, err := taxonomy.NewRegistry(categories, rules)
	require.NoError(t, err)
	return reg
}

func testPipeline(t *testing.T, docs []model.Document, membership map[string][]string) *Pipeline {
	t.Helper()
	return New(
		testRegistry(t),
		docindex.NewTypeIndex(docs),
		docindex.NewMembership(membership),
		testConfig(),
	)
}
