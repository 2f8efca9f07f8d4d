package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/pkg/anthropic"
)

// stubClient returns a canned reply or error for every CreateMessage call.
type stubClient struct {
	text string
	err  error

	lastReq anthropic.MessageRequest
}

func (c *stubClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &anthropic.MessageResponse{Text: c.text}, nil
}

func TestParseProposals(t *testing.T) {
	got, err := parseProposals(`Here are the roles:
` + "```json" + `
[{"type": "witness", "confidence": 0.7, "rationale": "testified at trial"}]
` + "```")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "witness", got[0].LabelID)
	assert.Equal(t, 0.7, got[0].Confidence)
	assert.Equal(t, "testified at trial", got[0].Rationale)

	got, err = parseProposals("[]")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseProposals("I could not determine any roles.")
	assert.Error(t, err)

	_, err = parseProposals(`[{"type": broken]`)
	assert.Error(t, err)
}

func TestValidateProposals(t *testing.T) {
	reg := testRegistry(t)
	person := model.Entity{EntityID: "p1", Kind: model.KindPerson}

	records := validateProposals(reg, person, []proposal{
		{LabelID: "witness", Confidence: 0.75, Rationale: "named in testimony"},
		{LabelID: "witness", Confidence: 0.9},            // duplicate label
		{LabelID: "no_such_label", Confidence: 0.9},      // not in taxonomy
		{LabelID: "peripheral_figure", Confidence: 0.9},  // no rule
		{LabelID: "frequent_traveler", Confidence: 0.05}, // below low threshold
	})
	require.Len(t, records, 1)
	assert.Equal(t, "witness", records[0].LabelID)
	assert.Equal(t, 0.75, records[0].Confidence)
	assert.Equal(t, model.BucketHigh, records[0].ConfidenceBucket)
	assert.Equal(t, model.SourceLLM, records[0].Source)
	assert.Equal(t, "named in testimony", records[0].Evidence)

	// Kind gating: witness does not apply to organizations.
	org := model.Entity{EntityID: "o1", Kind: model.KindOrganization}
	assert.Empty(t, validateProposals(reg, org, []proposal{
		{LabelID: "witness", Confidence: 0.9},
	}))

	// Over-unity confidence is clamped, not rejected.
	records = validateProposals(reg, person, []proposal{
		{LabelID: "frequent_traveler", Confidence: 1.4},
	})
	require.Len(t, records, 1)
	assert.Equal(t, 1.0, records[0].Confidence)
}

func TestLLMSupplement_Propose(t *testing.T) {
	reg := testRegistry(t)
	entity := model.Entity{
		EntityID:      "p1",
		Kind:          model.KindPerson,
		CanonicalName: "Jane Doe",
		Biography:     "Jane Doe attended several hearings.",
	}

	client := &stubClient{text: `[{"type": "witness", "confidence": 0.6, "rationale": "present at hearings"}]`}
	sup := NewLLMSupplement(client, reg, "claude-sonnet-4-20250514", 0)
	assert.Equal(t, "llm", sup.Name())

	records := sup.Propose(context.Background(), entity)
	require.Len(t, records, 1)
	assert.Equal(t, "witness", records[0].LabelID)
	assert.Equal(t, model.BucketMedium, records[0].ConfidenceBucket)

	// The prompt advertises only ruled labels for the entity's kind.
	assert.Contains(t, client.lastReq.Prompt, "witness")
	assert.Contains(t, client.lastReq.Prompt, "frequent_traveler")
	assert.NotContains(t, client.lastReq.Prompt, "peripheral_figure")
	assert.Equal(t, int64(512), client.lastReq.MaxTokens)

	// Supplement failures degrade to nil, never an error.
	sup = NewLLMSupplement(&stubClient{err: eris.New("overloaded")}, reg, "m", 256)
	assert.Nil(t, sup.Propose(context.Background(), entity))

	sup = NewLLMSupplement(&stubClient{text: "no array here"}, reg, "m", 256)
	assert.Nil(t, sup.Propose(context.Background(), entity))

	// Blank biographies are never sent to the model.
	client = &stubClient{text: "[]"}
	sup = NewLLMSupplement(client, reg, "m", 256)
	assert.Nil(t, sup.Propose(context.Background(), model.Entity{EntityID: "p2", Kind: model.KindPerson, Biography: "  "}))
	assert.Empty(t, client.lastReq.Prompt)
}

func TestFileSupplement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "supplement.json")
	records := map[string][]proposal{
		"p1": {{LabelID: "witness", Confidence: 0.55, Rationale: "deposed twice"}},
		"p2": {{LabelID: "no_such_label", Confidence: 0.9}},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	sup, err := NewFileSupplement(path, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "llm_file", sup.Name())

	got := sup.Propose(context.Background(), model.Entity{EntityID: "p1", Kind: model.KindPerson})
	require.Len(t, got, 1)
	assert.Equal(t, "witness", got[0].LabelID)
	assert.Equal(t, model.BucketMedium, got[0].ConfidenceBucket)
	assert.Equal(t, model.SourceLLM, got[0].Source)

	// Invalid records validate away; unknown entities miss cleanly.
	assert.Empty(t, sup.Propose(context.Background(), model.Entity{EntityID: "p2", Kind: model.KindPerson}))
	assert.Empty(t, sup.Propose(context.Background(), model.Entity{EntityID: "p9", Kind: model.KindPerson}))

	_, err = NewFileSupplement(filepath.Join(dir, "missing.json"), testRegistry(t))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = NewFileSupplement(bad, testRegistry(t))
	assert.Error(t, err)
}
