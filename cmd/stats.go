package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/caselens/entity-cli/internal/model"
	"github.com/caselens/entity-cli/internal/pipeline"
)

var statsInput string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a classification output file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := pipeline.ReadOutput(statsInput)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, renderStats(out))
		return nil
	},
}

func renderStats(out *model.Output) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generated %s by %s v%s\n",
		out.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		out.Metadata.Method,
		out.Metadata.Version,
	)
	fmt.Fprintf(&b, "Entities: %d total, %d classified (%.1f%% coverage)\n\n",
		out.Metadata.TotalEntities,
		out.Metadata.ClassifiedEntities,
		out.Metadata.ClassificationCoverage*100,
	)

	s := out.Statistics
	b.WriteString(renderCountTable("By entity type", kindRows(s.ByType)))
	b.WriteString("\n")
	b.WriteString(renderCountTable("By source", stringRows(s.BySource)))
	b.WriteString("\n")
	b.WriteString(renderCountTable("By confidence", stringRows(s.ByConfidence)))
	return b.String()
}

func kindRows(byType map[model.EntityKind]model.KindStats) [][2]string {
	rows := make([][2]string, 0, len(byType))
	for kind, ks := range byType {
		rows = append(rows, [2]string{string(kind), fmt.Sprintf("%d / %d", ks.Classified, ks.Total)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}

func stringRows[K ~string](counts map[K]int) [][2]string {
	rows := make([][2]string, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, [2]string{string(k), fmt.Sprintf("%d", n)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}

func renderCountTable(title string, rows [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// Keep the table at least as wide as its title so go-pretty does not
	// wrap the title text.
	tw.Style().Size.WidthMin = len(title) + 4
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"key", "count"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render() + "\n"
}

func init() {
	statsCmd.Flags().StringVar(&statsInput, "input", "classifications.json", "classification output file to summarize")
	rootCmd.AddCommand(statsCmd)
}
