package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/config"
	"github.com/sells-group/seo-leads/internal/monitoring"
)

var (
	servePort    int
	serveNoCheck bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, config.ModeServe)
		if err != nil {
			return err
		}
		defer env.Close()

		srvAPI := newAPIServer(env)
		if srvAPI.Collector != nil && !serveNoCheck {
			checker := monitoring.NewChecker(srvAPI.Collector, env.Alerter, cfg.Alert)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srvAPI.routes(cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newAPIServer adapts the environment to the API's collaborators.
func newAPIServer(env *appEnv) *apiServer {
	s := &apiServer{
		Evaluator:   env.Pipeline,
		Finder:      env.Finder,
		Ranker:      env.Ranker,
		Catalog:     env.Catalog,
		Breakers:    env.Breakers,
		Metrics:     env.Metrics,
		Deps:        cfg.Dependencies(),
		DefaultGeo:  cfg.Pipeline.DefaultGeo,
		DefaultK:    cfg.Pipeline.MaxIndustries,
		Concurrency: cfg.Pipeline.MaxConcurrentLeads,
		Lookback:    cfg.Alert.LookbackHours,
	}
	if env.Store != nil {
		s.Runs = env.Store
		s.Collector = monitoring.NewCollector(env.Store)
	}
	return s
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoCheck, "no-health-check", false, "disable the background run failure-rate check")
	rootCmd.AddCommand(serveCmd)
}
