// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litgap CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials resolved at startup.
var loadedSecrets map[string]string

// logger is built from configuration before any subcommand runs.
var logger = zap.NewNop()

// secretDefault returns fallback when set, otherwise the resolved secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

var rootCmd = &cobra.Command{
	Use:   "litgap",
	Short: "Find gaps in research literature",
	Long: `litgap turns a research question into a boolean keyword query, retrieves
matching papers from a scholarly search API, and streams a generated answer
describing the current limitations of the field, citing the retrieved papers.

Run "litgap gaps <question>" for the full flow, or the individual stages with
query, search and scholar. "litgap serve" exposes the same flow over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Resolve(".secrets/", ".env")
		if err != nil {
			return err
		}
		loadedSecrets = s

		l, err := logging.New(loadLogConfig(), os.Stderr)
		if err != nil {
			return err
		}
		logger = l

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litgap.yaml or ~/.config/litgap/litgap.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("user_agent", "litgap/"+version)

	viper.SetDefault("genai.model", "gemini-2.5-flash")
	viper.SetDefault("genai.timeout", 2*time.Minute)

	viper.SetDefault("retrieval.source", "core")
	viper.SetDefault("retrieval.limit", 10)
	viper.SetDefault("retrieval.timeout", time.Minute)
	viper.SetDefault("retrieval.requests_per_second", 0)

	viper.SetDefault("scholar_graph.timeout", 30*time.Second)
	viper.SetDefault("scholar_graph.max_attempts", 5)
	viper.SetDefault("scholar_graph.requests_per_second", 1)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.cache_ttl", 15*time.Minute)
	viper.SetDefault("serve.shutdown_timeout", 10*time.Second)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litgap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litgap"))
		}
	}

	viper.SetEnvPrefix("LITGAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
