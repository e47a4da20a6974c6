package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/config"
	"github.com/sells-group/seo-leads/internal/pipeline"
)

var (
	runGeo           string
	runIndustries    []string
	runAddIndustries []string
	runMaxLeads      int
	runHotThreshold  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one lead discovery pass for a geography",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, config.ModeRun)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(ctx, buildRequest())
		if err != nil {
			return err
		}
		if errors.Is(res.Err(), pipeline.ErrNoData) {
			zap.L().Warn("run produced no leads", zap.String("geo", res.Geo))
		}
		return writeResult(os.Stdout, res)
	},
}

// buildRequest applies flags over configured defaults.
func buildRequest() pipeline.Request {
	geo := runGeo
	if geo == "" {
		geo = cfg.Pipeline.DefaultGeo
	}
	req := pipeline.NewRequest(geo)
	req.Industries = runIndustries
	req.AddIndustries = runAddIndustries
	req.MaxLeads = cfg.Pipeline.LeadsPerIndustry
	if runMaxLeads > 0 {
		req.MaxLeads = runMaxLeads
	}
	req.HotThreshold = cfg.Pipeline.HotThreshold
	if runHotThreshold >= 0 {
		req.HotThreshold = runHotThreshold
	}
	return req
}

// runSummary is the JSON printed after a run.
type runSummary struct {
	RunID      string        `json:"run_id"`
	Geo        string        `json:"geo"`
	Industries []string      `json:"industries"`
	Status     string        `json:"status"`
	Rows       int           `json:"rows"`
	Hot        int           `json:"hot"`
	ReportRef  string        `json:"report_ref,omitempty"`
	Failures   []string      `json:"failures,omitempty"`
	Duration   string        `json:"duration"`
	TopLeads   []leadSummary `json:"top_leads,omitempty"`
}

type leadSummary struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Website  string `json:"website,omitempty"`
	Score    int    `json:"score"`
}

func summarize(res *pipeline.Result) runSummary {
	s := runSummary{
		RunID:      res.RunID,
		Geo:        res.Geo,
		Industries: res.Industries,
		Status:     string(res.Status),
		Rows:       len(res.Rows),
		Hot:        len(res.Hot),
		ReportRef:  res.ReportRef,
		Duration:   res.Duration.String(),
	}
	for _, f := range res.Failures {
		s.Failures = append(s.Failures, f.Error())
	}
	for _, r := range res.Hot[:min(pipeline.DefaultAlertLimit, len(res.Hot))] {
		s.TopLeads = append(s.TopLeads, leadSummary{
			Name:     r.Lead.Name,
			Industry: r.Industry,
			Website:  r.Lead.Website,
			Score:    r.Score,
		})
	}
	return s
}

func writeResult(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summarize(res))
}

func init() {
	runCmd.Flags().StringVar(&runGeo, "geo", "", "target geography, e.g. \"Austin, TX\" (default from config)")
	runCmd.Flags().StringSliceVar(&runIndustries, "industries", nil, "industries to search instead of the demand ranking")
	runCmd.Flags().StringSliceVar(&runAddIndustries, "add-industries", nil, "industries appended to the demand ranking")
	runCmd.Flags().IntVar(&runMaxLeads, "max-leads", 0, "leads per industry (default from config)")
	runCmd.Flags().IntVar(&runHotThreshold, "hot-threshold", -1, "minimum hot score (default from config)")
	rootCmd.AddCommand(runCmd)
}
