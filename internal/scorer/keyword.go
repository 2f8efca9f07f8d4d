// Package scorer implements keyword scoring of free text against a
// single label's rule.
package scorer

import (
	"strings"

	"github.com/caselens/entity-cli/internal/model"
)

// contextWeight caps the contribution of context keywords. A full context
// match can only push a partial primary match upward, never substitute
// for primary evidence.
const contextWeight = 0.5

// RuleSource provides the keyword rule for a label id.
type RuleSource interface {
	Rule(labelID string) (model.Rule, bool)
}

// Engine scores text blobs against label rules.
type Engine struct {
	rules RuleSource
}

// NewEngine creates an Engine reading rules from src.
func NewEngine(src RuleSource) *Engine {
	return &Engine{rules: src}
}

// Score evaluates text against the rule for labelID and returns a score
// in [0,1] plus the matched keywords (primary first, then context).
//
// Exclusion terms short-circuit before any positive scoring: their
// presence anywhere in the text forces a zero score regardless of how
// many keywords also match. A label with no rule, or a rule with no
// primary keywords, can never be derived this way.
func (e *Engine) Score(text, labelID string, includeContext bool) (float64, []string) {
	if text == "" {
		return 0, nil
	}
	rule, ok := e.rules.Rule(labelID)
	if !ok || len(rule.Keywords) == 0 {
		return 0, nil
	}

	lower := strings.ToLower(text)

	for _, term := range rule.Exclusions {
		if strings.Contains(lower, term) {
			return 0, nil
		}
	}

	var matched []string
	seen := make(map[string]bool)
	for _, kw := range rule.Keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
			seen[kw] = true
		}
	}
	primary := len(matched)
	score := float64(primary) / float64(len(rule.Keywords))

	if includeContext && len(rule.ContextKeywords) > 0 {
		ctxHits := 0
		for _, kw := range rule.ContextKeywords {
			if strings.Contains(lower, kw) {
				ctxHits++
				// A term listed both as primary and context keyword is
				// reported once.
				if !seen[kw] {
					matched = append(matched, kw)
					seen[kw] = true
				}
			}
		}
		score += float64(ctxHits) / float64(len(rule.ContextKeywords)) * contextWeight
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}
