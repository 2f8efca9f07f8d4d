package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/taxonomy"
	"github.com/caselens/entity-cli/pkg/anthropic"
)

const llmSystemPrompt = `You classify named entities from a document archive into semantic roles. Given an entity's biography, respond with a JSON array of role proposals drawn ONLY from the allowed labels, e.g. [{"type": "witness", "confidence": 0.7, "rationale": "..."}]. Propose nothing when the biography supports no role.`

// LLMSupplement asks a model for role proposals when keyword derivation
// produced nothing for a biography-bearing entity. Proposals are
// validated against the taxonomy and bucketed by the label's own
// thresholds; anything the rules would have rejected is rejected here
// too.
type LLMSupplement struct {
	client    anthropic.Client
	reg       *taxonomy.Registry
	model     string
	maxTokens int64
}

// NewLLMSupplement creates the network-backed supplement source.
func NewLLMSupplement(client anthropic.Client, reg *taxonomy.Registry, modelName string, maxTokens int) *LLMSupplement {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &LLMSupplement{client: client, reg: reg, model: modelName, maxTokens: int64(maxTokens)}
}

// Name identifies the supplement source in output metadata.
func (s *LLMSupplement) Name() string { return "llm" }

// Propose returns validated model proposals for the entity, or nil. Any
// failure degrades to nil; the batch never aborts on a supplement error.
func (s *LLMSupplement) Propose(ctx context.Context, e model.Entity) []model.Classification {
	if strings.TrimSpace(e.Biography) == "" {
		return nil
	}
	allowed := s.ruledLabels(e.Kind)
	if len(allowed) == 0 {
		return nil
	}

	prompt := fmt.Sprintf("Entity: %s (%s)\nAllowed labels: %s\n\nBiography:\n%s",
		e.CanonicalName, e.Kind, strings.Join(allowed, ", "), e.Biography)

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    llmSystemPrompt,
		Prompt:    prompt,
	})
	if err != nil {
		zap.L().Warn("pipeline: llm supplement failed",
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
		return nil
	}

	proposals, err := parseProposals(resp.Text)
	if err != nil {
		zap.L().Warn("pipeline: llm supplement returned unparseable proposals",
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
		return nil
	}
	return validateProposals(s.reg, e, proposals)
}

func (s *LLMSupplement) ruledLabels(kind model.EntityKind) []string {
	var out []string
	for _, labelID := range s.reg.LabelsForKind(kind) {
		if _, ok := s.reg.Rule(labelID); ok {
			out = append(out, labelID)
		}
	}
	return out
}

// proposal is one model-suggested role.
type proposal struct {
	LabelID    string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
}

// parseProposals extracts the JSON array from a model reply, tolerating
// surrounding prose and markdown fences.
func parseProposals(text string) ([]proposal, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, eris.New("no JSON array in reply")
	}
	var proposals []proposal
	if err := json.Unmarshal([]byte(text[start:end+1]), &proposals); err != nil {
		return nil, eris.Wrap(err, "unmarshal proposals")
	}
	return proposals, nil
}

// validateProposals keeps only proposals that resolve in the taxonomy,
// apply to the entity's kind, carry a rule, and clear that rule's low
// threshold. The invariants for keyword-derived records hold for
// supplemented ones too.
func validateProposals(reg *taxonomy.Registry, e model.Entity, proposals []proposal) []model.Classification {
	seen := make(map[string]bool)
	var out []model.Classification
	for _, p := range proposals {
		if seen[p.LabelID] {
			continue
		}
		info, ok := reg.LabelInfo(p.LabelID)
		if !ok || !info.Applies(e.Kind) {
			continue
		}
		rule, ok := reg.Rule(p.LabelID)
		if !ok {
			continue
		}
		confidence := p.Confidence
		if confidence > 1 {
			confidence = 1
		}
		bucket, ok := rule.Thresholds.Bucket(confidence)
		if !ok {
			continue
		}

		evidence := "Model-proposed role from biography review."
		if p.Rationale != "" {
			evidence = p.Rationale
		}
		seen[p.LabelID] = true
		out = append(out, model.Classification{
			LabelID:          p.LabelID,
			Category:         info.Category,
			DisplayLabel:     info.DisplayLabel,
			Confidence:       confidence,
			ConfidenceBucket: bucket,
			Source:           model.SourceLLM,
			Evidence:         evidence,
		})
	}
	return out
}

// FileSupplement serves pre-computed classification records produced by
// an external LLM pipeline, keyed by entity id. It lets a batch consume
// that pipeline's output offline, with the same validation as the
// network source.
type FileSupplement struct {
	reg     *taxonomy.Registry
	records map[string][]proposal
}

// NewFileSupplement loads a supplement record file. A malformed file is
// fatal, matching the treatment of every other input.
func NewFileSupplement(path string, reg *taxonomy.Registry) (*FileSupplement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read supplement %s", path)
	}
	records := make(map[string][]proposal)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse supplement %s", path)
	}
	zap.L().Info("pipeline: supplement records loaded",
		zap.String("path", path),
		zap.Int("entities", len(records)),
	)
	return &FileSupplement{reg: reg, records: records}, nil
}

// Name identifies the supplement source in output metadata.
func (s *FileSupplement) Name() string { return "llm_file" }

// Propose returns the validated records for the entity, or nil.
func (s *FileSupplement) Propose(_ context.Context, e model.Entity) []model.Classification {
	proposals, ok := s.records[e.EntityID]
	if !ok {
		return nil
	}
	return validateProposals(s.reg, e, proposals)
}
