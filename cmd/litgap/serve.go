// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/litgap/internal/categories"
	"github.com/pdiddy/litgap/internal/metrics"
	"github.com/pdiddy/litgap/internal/pipeline"
	"github.com/pdiddy/litgap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gap-finding flow over HTTP",
	Long: `Serve starts an HTTP server exposing the category lookup, the gaps pipeline
as a newline-delimited JSON event stream, a health check and Prometheus
metrics. It shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Serve.Addr = addr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)

		p, err := newPipeline(cfg, m, pipeline.NewCache(cfg.Serve.CacheTTL))
		if err != nil {
			return err
		}
		tbl, err := categories.Load(cfg.CategoriesFile)
		if err != nil {
			return err
		}

		srv := &server.Server{
			Runner:     p,
			Categories: tbl,
			Metrics:    m,
			Logger:     logger.Named("server"),
		}

		logger.Info("starting server",
			zap.String("addr", cfg.Serve.Addr),
			zap.String("source", string(cfg.Retrieval.Source)),
			zap.Duration("cache_ttl", cfg.Serve.CacheTTL),
		)
		return srv.ListenAndServe(cmd.Context(), cfg.Serve.Addr, cfg.Serve.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")

	rootCmd.AddCommand(serveCmd)
}
