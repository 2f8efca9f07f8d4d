package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/model"
)

func TestFallback_Assign(t *testing.T) {
	f := NewFallback(
		testRegistry(t),
		docindex.NewMembership(map[string][]string{"jane doe": {"d1", "d2", "d3"}}),
		testConfig(),
	)
	e := model.Entity{Kind: model.KindPerson, NormalizedName: "jane doe"}

	r := f.Assign(e)
	require.NotNil(t, r)
	assert.Equal(t, "peripheral_figure", r.LabelID)
	assert.Equal(t, 0.3, r.Confidence)
	assert.Equal(t, model.BucketLow, r.ConfidenceBucket)
	assert.Equal(t, model.SourceDefault, r.Source)
	assert.Equal(t, 3, r.DocumentCount)
	assert.Contains(t, r.Evidence, "3 documents")
	assert.Contains(t, r.Evidence, "no specific role")
}

func TestFallback_NoMembership(t *testing.T) {
	f := NewFallback(testRegistry(t), docindex.NewMembership(nil), testConfig())
	e := model.Entity{Kind: model.KindPerson, NormalizedName: "jane doe"}

	assert.Nil(t, f.Assign(e), "entities with no membership remain unlabeled")
}

func TestFallback_MissingPeripheralLabel(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackLabel = "not_in_taxonomy"
	f := NewFallback(
		testRegistry(t),
		docindex.NewMembership(map[string][]string{"jane doe": {"d1"}}),
		cfg,
	)
	e := model.Entity{Kind: model.KindPerson, NormalizedName: "jane doe"}
	assert.Nil(t, f.Assign(e))
}

func TestFallback_SingleDocumentWording(t *testing.T) {
	f := NewFallback(
		testRegistry(t),
		docindex.NewMembership(map[string][]string{"jane doe": {"d1"}}),
		testConfig(),
	)
	r := f.Assign(model.Entity{Kind: model.KindPerson, NormalizedName: "jane doe"})
	require.NotNil(t, r)
	assert.Contains(t, r.Evidence, "1 document;")
}
