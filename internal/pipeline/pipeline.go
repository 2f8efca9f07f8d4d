// Package pipeline drives the classification batch: it runs the
// biography and document-context classifiers, the merger, the optional
// LLM supplement, and the fallback assigner across the full entity
// population, and aggregates run-level statistics.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/caselens/entity-cli/internal/classifier"
	"github.com/caselens/entity-cli/internal/config"
	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

// Version identifies the derivation engine revision recorded in output
// metadata.
const Version = "2.1.0"

// Supplement proposes classifications for an entity that earned no
// keyword-derived label. Implementations must degrade to nil on failure;
// a supplement error never aborts the batch.
type Supplement interface {
	Propose(ctx context.Context, e model.Entity) []model.Classification
	Name() string
}

// Pipeline derives classifications for a whole population.
type Pipeline struct {
	reg        *taxonomy.Registry
	bio        *classifier.Biography
	docCtx     *classifier.DocContext
	fallback   *classifier.Fallback
	supplement Supplement
	cfg        config.ClassifyConfig
}

// New wires the classifiers over the shared read-only lookups. The
// lookups are built before any parallel work begins and are never
// mutated afterward, so workers share them without locks.
func New(reg *taxonomy.Registry, types *docindex.TypeIndex, membership *docindex.Membership, cfg config.ClassifyConfig) *Pipeline {
	return &Pipeline{
		reg:      reg,
		bio:      classifier.NewBiography(reg, cfg),
		docCtx:   classifier.NewDocContext(reg, types, membership, cfg),
		fallback: classifier.NewFallback(reg, membership, cfg),
		cfg:      cfg,
	}
}

// WithSupplement attaches an optional supplementary classification
// source consulted before the fallback assigner.
func (p *Pipeline) WithSupplement(s Supplement) *Pipeline {
	p.supplement = s
	return p
}

// Run classifies every entity and returns the complete output structure.
// Absence of evidence for an entity is the normal "no classification"
// outcome and never aborts the batch; only cancellation does, and a
// cancelled batch yields no output at all.
func (p *Pipeline) Run(ctx context.Context, pop *model.Population) (*model.Output, error) {
	start := time.Now()
	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	zap.L().Info("pipeline: starting batch",
		zap.Int("entities", pop.Total()),
		zap.Int("workers", workers),
	)

	var mu sync.Mutex
	results := make(map[string]model.EntityResult, pop.Total())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, kind := range model.AllKinds() {
		for _, e := range pop.ByKind(kind) {
			g.Go(func() error {
				// Stop scheduling further entities once cancelled.
				if err := gctx.Err(); err != nil {
					return err
				}
				result := p.classifyEntity(gctx, e)
				mu.Lock()
				results[e.EntityID] = result
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		// A partially completed batch is not a committed result.
		return nil, eris.Wrap(err, "pipeline: batch aborted")
	}

	stats := aggregate(pop, results)
	coverage := 0.0
	if stats.TotalEntities > 0 {
		coverage = float64(stats.ClassifiedEntities) / float64(stats.TotalEntities)
	}

	method := "keyword_derivation"
	if p.supplement != nil {
		method += "+" + p.supplement.Name()
	}

	out := &model.Output{
		Metadata: model.Metadata{
			GeneratedAt:            time.Now().UTC(),
			TotalEntities:          stats.TotalEntities,
			ClassifiedEntities:     stats.ClassifiedEntities,
			ClassificationCoverage: coverage,
			Method:                 method,
			Version:                Version,
		},
		Statistics: stats,
		Entities:   results,
	}

	zap.L().Info("pipeline: batch complete",
		zap.Int("total", stats.TotalEntities),
		zap.Int("classified", stats.ClassifiedEntities),
		zap.Float64("coverage", coverage),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// classifyEntity runs the per-entity derivation sequence. It never
// fails: missing evidence at every stage leaves the entity unlabeled,
// which is a valid terminal state.
func (p *Pipeline) classifyEntity(ctx context.Context, e model.Entity) model.EntityResult {
	bioRecords := p.bio.Classify(e)
	docRecords := p.docCtx.Classify(e)
	merged := classifier.Merge(bioRecords, docRecords, p.reg, p.cfg.ExcerptLength)

	if len(merged) == 0 && p.supplement != nil {
		merged = p.supplement.Propose(ctx, e)
	}
	if len(merged) == 0 {
		if r := p.fallback.Assign(e); r != nil {
			merged = []model.Classification{*r}
		}
	}

	if len(merged) > 0 {
		zap.L().Debug("pipeline: entity classified",
			zap.String("entity_id", e.EntityID),
			zap.Int("labels", len(merged)),
			zap.String("top_label", merged[0].LabelID),
		)
	}
	return model.EntityResult{
		EntityID:        e.EntityID,
		Kind:            e.Kind,
		CanonicalName:   e.CanonicalName,
		Classifications: merged,
	}
}

// aggregate computes the run-level statistics over all results.
func aggregate(pop *model.Population, results map[string]model.EntityResult) model.Statistics {
	stats := model.NewStatistics()
	stats.TotalEntities = pop.Total()

	for _, kind := range model.AllKinds() {
		ks := model.KindStats{Total: len(pop.ByKind(kind))}
		stats.ByType[kind] = ks
	}

	for _, result := range results {
		if len(result.Classifications) == 0 {
			continue
		}
		stats.ClassifiedEntities++
		ks := stats.ByType[result.Kind]
		ks.Classified++
		stats.ByType[result.Kind] = ks

		for _, r := range result.Classifications {
			stats.BySource[r.Source]++
			stats.ByConfidence[r.ConfidenceBucket]++
		}
	}
	return stats
}
