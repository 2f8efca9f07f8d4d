package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caselens/entity-cli/internal/docindex"
	"github.com/caselens/entity-cli/internal/taxonomy"
)

var (
	validateTaxonomy   string
	validateRules      string
	validateDocuments  string
	validateMembership string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate taxonomy and rule files without running a batch",
	Long:  "Loads the taxonomy and rules, fails on cross-reference problems (duplicate labels, rules for unknown labels, malformed thresholds), and reports labels that carry no rule.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := taxonomy.Load(validateTaxonomy, validateRules)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Taxonomy OK: %s\n", reg.Describe())
		if unruled := reg.UnruledLabels(); len(unruled) > 0 {
			fmt.Fprintf(os.Stdout, "Labels without rules (reachable only via fallback or supplement): %s\n",
				strings.Join(unruled, ", "))
		}

		if validateDocuments != "" {
			types, err := docindex.LoadTypeIndex(validateDocuments)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Document index OK: %d typed documents\n", types.Len())
		}
		if validateMembership != "" {
			membership, err := docindex.LoadMembership(validateMembership)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Membership OK: %d name keys\n", membership.Len())
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateTaxonomy, "taxonomy", "", "taxonomy definition file (required)")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "classification rules file (required)")
	validateCmd.Flags().StringVar(&validateDocuments, "documents", "", "document type index file (optional)")
	validateCmd.Flags().StringVar(&validateMembership, "membership", "", "membership file (optional)")
	_ = validateCmd.MarkFlagRequired("taxonomy")
	_ = validateCmd.MarkFlagRequired("rules")
	rootCmd.AddCommand(validateCmd)
}
