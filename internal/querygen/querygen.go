// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package querygen turns a natural-language research question into a boolean
// keyword query using two generative-text calls: one to name the topic, one
// to list related fields.
package querygen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/genai"
	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/pkg/types"
)

const (
	topicPrompt   = "Turn the following question into a phrase that describes the topics or fields the question is asking about:"
	keywordPrompt = "Return a comma-separated list of around 10 words or phrases describing various fields or topics of the following query:"
	keywordSuffix = ". The first few words and phrases in the list should come directly from the query."
)

// Sampling is the generation configuration used for both calls.
var Sampling = genai.GenerationConfig{
	MaxOutputTokens: 8096,
	Temperature:     0.8,
	TopP:            0.95,
	TopK:            3,
}

// Synthesizer produces boolean queries from questions.
type Synthesizer struct {
	Generator genai.Generator
	Logger    *zap.Logger
}

// Result carries the intermediate topic phrase alongside the query.
type Result struct {
	Topic    string             `json:"topic" yaml:"topic"`
	Keywords []string           `json:"keywords" yaml:"keywords"`
	Query    types.BooleanQuery `json:"query" yaml:"query"`
}

// Synthesize returns the boolean query for question. Any failure of either
// generative call is returned unchanged.
func (s *Synthesizer) Synthesize(ctx context.Context, question string) (types.BooleanQuery, error) {
	res, err := s.Explain(ctx, question)
	if err != nil {
		return "", err
	}
	return res.Query, nil
}

// Explain runs both calls and returns every intermediate value.
func (s *Synthesizer) Explain(ctx context.Context, question string) (Result, error) {
	if s.Generator == nil {
		return Result{}, apperr.Configuration("GEMINI_API_KEY", "no generative-text client configured")
	}
	log := logging.OrNop(s.Logger)

	topic, err := s.Generator.Generate(ctx, TopicPrompt(question), Sampling)
	if err != nil {
		return Result{}, fmt.Errorf("describing topic: %w", err)
	}
	log.Debug("topic phrase", zap.String("topic", topic))

	list, err := s.Generator.Generate(ctx, KeywordPrompt(topic), Sampling)
	if err != nil {
		return Result{}, fmt.Errorf("listing keywords: %w", err)
	}

	keywords := ParseKeywords(list)
	query := types.NewBooleanQuery(keywords)
	log.Debug("boolean query", zap.Strings("keywords", keywords), zap.Stringer("query", query))

	return Result{Topic: topic, Keywords: keywords, Query: query}, nil
}

// TopicPrompt is the first prompt: question to topic phrase.
func TopicPrompt(question string) string {
	return topicPrompt + question
}

// KeywordPrompt is the second prompt: topic phrase to keyword list.
func KeywordPrompt(topic string) string {
	return keywordPrompt + topic + keywordSuffix
}

// ParseKeywords splits a comma-separated response into trimmed phrases,
// dropping empty entries and trailing periods on the last one.
func ParseKeywords(response string) []string {
	parts := strings.Split(response, ",")
	phrases := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			p = strings.TrimSpace(strings.TrimRight(p, "."))
		}
		if p == "" {
			continue
		}
		phrases = append(phrases, p)
	}
	return phrases
}
