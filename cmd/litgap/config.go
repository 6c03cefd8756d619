// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/litgap/internal/secrets"
	"github.com/pdiddy/litgap/pkg/types"
)

func httpConfig(section string) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   viper.GetDuration(section + ".timeout"),
		UserAgent: viper.GetString("user_agent"),
	}
}

func loadLogConfig() types.LogConfig {
	return types.LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
		File:   viper.GetString("log.file"),
	}
}

// loadConfig assembles the configuration from viper and the resolved
// credentials. Explicit config values win over secrets.
func loadConfig() types.Config {
	return types.Config{
		GenAI: types.GenAIConfig{
			HTTPConfig: httpConfig("genai"),
			Model:      viper.GetString("genai.model"),
			APIKey:     secretDefault(secrets.GeminiAPIKey, viper.GetString("genai.api_key")),
			BaseURL:    viper.GetString("genai.base_url"),
		},
		Retrieval: types.RetrievalConfig{
			HTTPConfig:        httpConfig("retrieval"),
			Source:            types.RetrievalSource(viper.GetString("retrieval.source")),
			CoreAPIKey:        secretDefault(secrets.CoreAPIKey, viper.GetString("retrieval.core_api_key")),
			OpenAlexEmail:     secretDefault(secrets.OpenAlexEmail, viper.GetString("retrieval.openalex_email")),
			Limit:             viper.GetInt("retrieval.limit"),
			RequestsPerSecond: viper.GetFloat64("retrieval.requests_per_second"),
		},
		ScholarGraph: types.ScholarGraphConfig{
			HTTPConfig:        httpConfig("scholar_graph"),
			APIKey:            secretDefault(secrets.SemanticScholarAPIKey, viper.GetString("scholar_graph.api_key")),
			MaxAttempts:       viper.GetInt("scholar_graph.max_attempts"),
			RequestsPerSecond: viper.GetFloat64("scholar_graph.requests_per_second"),
		},
		Log: loadLogConfig(),
		Serve: types.ServeConfig{
			Addr:            viper.GetString("serve.addr"),
			CacheTTL:        viper.GetDuration("serve.cache_ttl"),
			ShutdownTimeout: viper.GetDuration("serve.shutdown_timeout"),
		},
		CategoriesFile: viper.GetString("categories_file"),
	}
}
