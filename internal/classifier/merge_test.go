package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/entity-cli/internal/model"
)

func TestMerge_PassThrough(t *testing.T) {
	reg := testRegistry(t)

	bio := []model.Classification{
		{LabelID: "witness", Confidence: 0.9, Source: model.SourceBiography, Evidence: "bio evidence"},
	}
	doc := []model.Classification{
		{LabelID: "frequent_traveler", Confidence: 0.6, Source: model.SourceDocContext, Evidence: "doc evidence"},
	}

	merged := Merge(bio, doc, reg, 100)
	require.Len(t, merged, 2)

	// Labels present in only one list pass through unchanged.
	assert.Equal(t, "witness", merged[0].LabelID)
	assert.Equal(t, model.SourceBiography, merged[0].Source)
	assert.Equal(t, "bio evidence", merged[0].Evidence)
	assert.Equal(t, "frequent_traveler", merged[1].LabelID)
	assert.Equal(t, model.SourceDocContext, merged[1].Source)
}

func TestMerge_OverlapKeepsHigherConfidence(t *testing.T) {
	reg := testRegistry(t)

	bio := []model.Classification{
		{LabelID: "witness", Confidence: 0.5, ConfidenceBucket: model.BucketMedium, Source: model.SourceBiography, Evidence: "testified before the grand jury"},
	}
	doc := []model.Classification{
		{LabelID: "witness", Confidence: 0.9, ConfidenceBucket: model.BucketHigh, Source: model.SourceDocContext, Evidence: "Appears in 4 documents classified as deposition.", DocumentCount: 4},
	}

	merged := Merge(bio, doc, reg, 100)
	require.Len(t, merged, 1)

	r := merged[0]
	assert.Equal(t, 0.9, r.Confidence, "higher confidence wins, not an average")
	assert.Equal(t, model.BucketHigh, r.ConfidenceBucket)
	assert.Equal(t, model.SourceCombined, r.Source)
	// Evidence is always combined on overlap, whichever side won.
	assert.Contains(t, r.Evidence, "grand jury")
	assert.Contains(t, r.Evidence, "4 documents")
}

func TestMerge_OverlapBioWins(t *testing.T) {
	reg := testRegistry(t)

	bio := []model.Classification{
		{LabelID: "witness", Confidence: 1.0, Source: model.SourceBiography, Evidence: "bio side"},
	}
	doc := []model.Classification{
		{LabelID: "witness", Confidence: 0.4, Source: model.SourceDocContext, Evidence: "doc side"},
	}

	merged := Merge(bio, doc, reg, 100)
	require.Len(t, merged, 1)
	assert.Equal(t, 1.0, merged[0].Confidence)
	assert.Equal(t, model.SourceCombined, merged[0].Source)
	assert.Contains(t, merged[0].Evidence, "bio side")
	assert.Contains(t, merged[0].Evidence, "doc side")
}

func TestMerge_Idempotence(t *testing.T) {
	reg := testRegistry(t)

	list := []model.Classification{
		{LabelID: "witness", Confidence: 0.8, Source: model.SourceBiography, Evidence: "same evidence"},
		{LabelID: "legal_professional", Confidence: 0.4, Source: model.SourceBiography, Evidence: "other evidence"},
	}

	merged := Merge(list, list, reg, 100)
	require.Len(t, merged, 2, "one record per label")
	for _, r := range merged {
		assert.Equal(t, model.SourceCombined, r.Source)
	}
	assert.Equal(t, 0.8, merged[0].Confidence, "confidence unchanged")
	assert.Equal(t, 0.4, merged[1].Confidence)
}

func TestMerge_BioExcerptTruncated(t *testing.T) {
	reg := testRegistry(t)
	longEvidence := strings.Repeat("x", 400)

	bio := []model.Classification{{LabelID: "witness", Confidence: 0.6, Evidence: longEvidence}}
	doc := []model.Classification{{LabelID: "witness", Confidence: 0.5, Evidence: "doc sentence"}}

	merged := Merge(bio, doc, reg, 50)
	require.Len(t, merged, 1)
	assert.Less(t, len(merged[0].Evidence), 100)
	assert.Contains(t, merged[0].Evidence, "doc sentence")
}

func TestMerge_Ordering(t *testing.T) {
	reg := testRegistry(t)

	// Equal confidence: lower taxonomy priority (witness=1) sorts before
	// legal_professional (2); higher confidence always sorts first.
	bio := []model.Classification{
		{LabelID: "legal_professional", Confidence: 0.7},
		{LabelID: "witness", Confidence: 0.7},
	}
	doc := []model.Classification{
		{LabelID: "social_contact", Confidence: 0.9},
	}

	merged := Merge(bio, doc, reg, 100)
	require.Len(t, merged, 3)
	assert.Equal(t, "social_contact", merged[0].LabelID)
	assert.Equal(t, "witness", merged[1].LabelID)
	assert.Equal(t, "legal_professional", merged[2].LabelID)
}

func TestMerge_Empty(t *testing.T) {
	reg := testRegistry(t)
	assert.Empty(t, Merge(nil, nil, reg, 100))
}
