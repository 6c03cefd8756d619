// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/pdiddy/litgap/internal/genai"
	"github.com/pdiddy/litgap/internal/metrics"
	"github.com/pdiddy/litgap/internal/pipeline"
	"github.com/pdiddy/litgap/internal/querygen"
	"github.com/pdiddy/litgap/internal/search"
	"github.com/pdiddy/litgap/internal/synthesis"
	"github.com/pdiddy/litgap/pkg/types"
)

func newSynthesizer(cfg types.Config) (*querygen.Synthesizer, error) {
	gen, err := genai.NewGeminiClient(cfg.GenAI)
	if err != nil {
		return nil, err
	}
	return &querygen.Synthesizer{Generator: gen, Logger: logger.Named("querygen")}, nil
}

func newRetriever(cfg types.Config) (search.Retriever, error) {
	r, err := search.NewRetriever(cfg.Retrieval)
	if err != nil {
		return nil, err
	}
	if core, ok := r.(*search.CoreBackend); ok {
		core.Logger = logger.Named("core")
	}
	return r, nil
}

// newPipeline wires the three stages from cfg. Credentials are checked here,
// before any network call.
func newPipeline(cfg types.Config, m *metrics.Metrics, cache *pipeline.Cache) (*pipeline.Pipeline, error) {
	gen, err := genai.NewGeminiClient(cfg.GenAI)
	if err != nil {
		return nil, err
	}
	retriever, err := newRetriever(cfg)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Synthesizer: &querygen.Synthesizer{Generator: gen, Logger: logger.Named("querygen")},
		Retriever:   retriever,
		Engine:      &synthesis.Engine{Generator: gen, Logger: logger.Named("synthesis")},
		Cache:       cache,
		Metrics:     m,
		Logger:      logger.Named("pipeline"),
	}, nil
}
