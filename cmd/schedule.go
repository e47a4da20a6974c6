package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/config"
	"github.com/sells-group/seo-leads/internal/pipeline"
)

var scheduleNow bool

var weekdays = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

// cronSpec returns the six-field (seconds first) spec for a weekly run at
// the top of hour on weekday.
func cronSpec(weekday string, hour int) (string, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(weekday))]
	if !ok {
		return "", eris.Errorf("schedule: unknown weekday %q", weekday)
	}
	if hour < 0 || hour > 23 {
		return "", eris.Errorf("schedule: hour must be within 0-23, got %d", hour)
	}
	return fmt.Sprintf("0 0 %d * * %d", hour, d), nil
}

// weeklyJob runs the pipeline and skips a tick while the previous run is
// still going.
type weeklyJob struct {
	mu  sync.Mutex
	ctx context.Context
	run func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	req func() pipeline.Request
}

func (j *weeklyJob) Run() {
	if !j.mu.TryLock() {
		zap.L().Warn("schedule: previous run still in progress, skipping")
		return
	}
	defer j.mu.Unlock()

	if j.ctx.Err() != nil {
		return
	}
	req := j.req()
	res, err := j.run(j.ctx, req)
	if err != nil {
		zap.L().Error("schedule: run failed", zap.String("geo", req.Geo), zap.Error(err))
		return
	}
	zap.L().Info("schedule: run complete",
		zap.String("run_id", res.RunID),
		zap.String("status", string(res.Status)),
		zap.Int("rows", len(res.Rows)),
		zap.Int("hot", len(res.Hot)),
		zap.Duration("duration", res.Duration),
	)
}

// drain blocks until an in-flight run returns. A run that has not started
// yet sees the cancelled context and exits without work.
func (j *weeklyJob) drain() {
	j.mu.Lock()
	defer j.mu.Unlock()
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline weekly on the configured day and hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, config.ModeRun)
		if err != nil {
			return err
		}
		defer env.Close()

		loc, err := time.LoadLocation(cfg.Schedule.Timezone)
		if err != nil {
			return eris.Wrap(err, "schedule: load timezone")
		}
		spec, err := cronSpec(cfg.Schedule.Weekday, cfg.Schedule.Hour)
		if err != nil {
			return err
		}

		job := &weeklyJob{ctx: ctx, run: env.Pipeline.Run, req: buildRequest}
		c := cron.NewWithLocation(loc)
		if err := c.AddJob(spec, job); err != nil {
			return eris.Wrap(err, "schedule: add job")
		}
		c.Start()
		defer c.Stop()

		zap.L().Info("schedule: started",
			zap.String("spec", spec),
			zap.String("timezone", loc.String()),
			zap.Time("next", c.Entries()[0].Next),
		)
		if scheduleNow {
			go job.Run()
		}

		<-ctx.Done()
		zap.L().Info("schedule: shutting down, waiting for in-flight run")
		c.Stop()
		job.drain()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&runGeo, "geo", "", "target geography (default from config)")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "also run once immediately")
	rootCmd.AddCommand(scheduleCmd)
}
