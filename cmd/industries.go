package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/seo-leads/internal/config"
	"github.com/sells-group/seo-leads/internal/industry"
)

var (
	industriesGeo string
	industriesK   int
)

var industriesCmd = &cobra.Command{
	Use:   "industries",
	Short: "Rank catalog industries by local search demand",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.ModeRank); err != nil {
			return err
		}
		ranker, catalog, err := initRanker()
		if err != nil {
			return err
		}

		geo := industriesGeo
		if geo == "" {
			geo = cfg.Pipeline.DefaultGeo
		}
		k := industriesK
		if k <= 0 {
			k = cfg.Pipeline.MaxIndustries
		}

		scores, err := ranker.Scores(cmd.Context(), geo, catalog, k)
		if err != nil {
			return err
		}
		formatScores(os.Stdout, geo, scores)
		return nil
	},
}

// formatScores writes a ranked industry table to out.
func formatScores(out io.Writer, geo string, scores []industry.Score) {
	_, _ = fmt.Fprintf(out, "Top industries for %s\n\n", geo)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tINDUSTRY\tDEMAND\tPENALTY\tOPPORTUNITY")
	_, _ = fmt.Fprintln(w, "-\t--------\t------\t-------\t-----------")
	degraded := false
	for i, s := range scores {
		name := s.Name
		if s.Degraded {
			name += " *"
			degraded = true
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.0f\t%.2f\t%.1f\n", i+1, name, s.Demand, s.Penalty, s.Opportunity)
	}
	_ = w.Flush()
	if degraded {
		_, _ = fmt.Fprintln(out, "\n* demand lookup failed, stub estimate used")
	}
}

func init() {
	industriesCmd.Flags().StringVar(&industriesGeo, "geo", "", "target geography (default from config)")
	industriesCmd.Flags().IntVar(&industriesK, "k", 0, "number of industries to show (default pipeline.max_industries)")
	rootCmd.AddCommand(industriesCmd)
}
