package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/pipeline"
	"github.com/caselens/entity-cli/internal/taxonomy"
	anthropicpkg "github.com/caselens/entity-cli/pkg/anthropic"
)

var (
	classifyTaxonomy    string
	classifyRules       string
	classifyDocuments   string
	classifyEntitiesDir string
	classifyMembership  string
	classifyOutput      string
	classifyLLM         bool
	classifyLLMFile     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run batch classification over an entity population",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		reg, err := taxonomy.Load(classifyTaxonomy, classifyRules)
		if err != nil {
			return err
		}
		types, err := docindex.LoadTypeIndex(classifyDocuments)
		if err != nil {
			return err
		}
		membership, err := docindex.LoadMembership(classifyMembership)
		if err != nil {
			return err
		}
		pop, err := pipeline.LoadPopulation(classifyEntitiesDir)
		if err != nil {
			return err
		}

		p := pipeline.New(reg, types, membership, cfg.Classify)
		if supplement, err := initSupplement(reg); err != nil {
			return err
		} else if supplement != nil {
			p = p.WithSupplement(supplement)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		var runID string
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			run, err := st.CreateRun(ctx, classifyOutput)
			if err != nil {
				return eris.Wrap(err, "create run")
			}
			runID = run.ID
		}

		started := time.Now()
		out, err := p.Run(ctx, pop)
		if err != nil {
			if st != nil {
				if ferr := st.FailRun(ctx, runID, err); ferr != nil {
					zap.L().Warn("record failed run", zap.Error(ferr))
				}
			}
			return eris.Wrap(err, "classify run")
		}

		if err := pipeline.WriteOutput(classifyOutput, out); err != nil {
			if st != nil {
				if ferr := st.FailRun(ctx, runID, err); ferr != nil {
					zap.L().Warn("record failed run", zap.Error(ferr))
				}
			}
			return err
		}

		if st != nil {
			result := &model.RunResult{
				TotalEntities:      out.Metadata.TotalEntities,
				ClassifiedEntities: out.Metadata.ClassifiedEntities,
				Coverage:           out.Metadata.ClassificationCoverage,
				Records:            countRecords(out),
				DurationMS:         time.Since(started).Milliseconds(),
			}
			if err := st.CompleteRun(ctx, runID, result); err != nil {
				zap.L().Warn("record completed run", zap.Error(err))
			}
		}

		zap.L().Info("classification complete",
			zap.String("output", classifyOutput),
			zap.Int("total_entities", out.Metadata.TotalEntities),
			zap.Int("classified_entities", out.Metadata.ClassifiedEntities),
			zap.Float64("coverage", out.Metadata.ClassificationCoverage),
			zap.Duration("elapsed", time.Since(started)),
		)
		return nil
	},
}

// initSupplement picks at most one supplementary source: a pre-computed
// record file wins over the network client, and with neither configured
// the phase is silently off.
func initSupplement(reg *taxonomy.Registry) (pipeline.Supplement, error) {
	if classifyLLMFile != "" {
		return pipeline.NewFileSupplement(classifyLLMFile, reg)
	}
	if !classifyLLM {
		return nil, nil
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("--llm requires an API key (ENTITY_ANTHROPIC_KEY)")
	}
	client := anthropicpkg.NewClient(cfg.Anthropic.Key, anthropicpkg.Options{
		RequestsPerSec: cfg.Anthropic.RequestsPerSec,
		MaxRetries:     cfg.Anthropic.MaxRetries,
	})
	return pipeline.NewLLMSupplement(client, reg, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
}

func countRecords(out *model.Output) int {
	n := 0
	for _, e := range out.Entities {
		n += len(e.Classifications)
	}
	return n
}

func init() {
	classifyCmd.Flags().StringVar(&classifyTaxonomy, "taxonomy", "", "taxonomy definition file (required)")
	classifyCmd.Flags().StringVar(&classifyRules, "rules", "", "classification rules file (required)")
	classifyCmd.Flags().StringVar(&classifyDocuments, "documents", "", "document type index file (required)")
	classifyCmd.Flags().StringVar(&classifyEntitiesDir, "entities-dir", "", "directory with people.json, locations.json, organizations.json (required)")
	classifyCmd.Flags().StringVar(&classifyMembership, "membership", "", "name-to-documents membership file (required)")
	classifyCmd.Flags().StringVar(&classifyOutput, "output", "classifications.json", "destination path for the result file")
	classifyCmd.Flags().BoolVar(&classifyLLM, "llm", false, "ask the model for roles when keyword derivation finds none")
	classifyCmd.Flags().StringVar(&classifyLLMFile, "llm-file", "", "pre-computed supplement record file (overrides --llm)")
	for _, f := range []string{"taxonomy", "rules", "documents", "entities-dir", "membership"} {
		_ = classifyCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(classifyCmd)
}
