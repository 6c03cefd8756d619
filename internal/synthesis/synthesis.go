// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis asks the generative-text service what the current
// limitations of a research area are, grounded in retrieved papers, and
// streams the answer back as a single-use lazy sequence.
package synthesis

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/genai"
	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/pkg/types"
)

// Persona is the fixed system instruction appended after the paper lines.
const Persona = "You are an expert researcher. Your job is to answer questions about this research thoroughly and accurately. " +
	"You always answer questions using specific information and cite your sources, including author names and paper titles. " +
	"Use et al. for any paper with over 2 authors."

const taskPrefix = "What are current limitations in works in the field of "

// ErrStreamConsumed is yielded when an answer sequence is ranged over a
// second time.
var ErrStreamConsumed = errors.New("answer stream already consumed")

// Sampling is the generation configuration for the streamed answer.
var Sampling = genai.GenerationConfig{
	MaxOutputTokens: 8096,
	Temperature:     0.8,
	TopP:            0.95,
	TopK:            3,
}

// Engine produces streamed answers.
type Engine struct {
	Generator genai.Generator
	Logger    *zap.Logger
	// OnChunk, when set, is called for every yielded chunk.
	OnChunk func(chunk string)
}

// BuildModelInput assembles the prompt: one line per paper whose selected
// content is available, then the persona, then the task.
func BuildModelInput(req types.SynthesisRequest) string {
	var b strings.Builder
	for _, p := range req.Papers {
		content := p.Content(req.FullText)
		if content == nil {
			continue
		}
		b.WriteString(p.Title)
		b.WriteString(", ")
		b.WriteString(p.AuthorList())
		b.WriteString(", ")
		b.WriteString(*content)
		b.WriteString("\n")
	}
	b.WriteString(Persona)
	b.WriteString("\n")
	b.WriteString(taskPrefix + req.Question + "?")
	return b.String()
}

// Answer returns the streamed answer for req. Nothing is sent until the
// sequence is ranged over. Empty updates are skipped, and the first error
// ends the sequence. Stopping early closes the upstream connection. The
// sequence can be ranged once; later ranges yield ErrStreamConsumed.
func (e *Engine) Answer(ctx context.Context, req types.SynthesisRequest) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrStreamConsumed)
			return
		}
		if e.Generator == nil {
			yield("", apperr.Configuration("GEMINI_API_KEY", "no generative-text client configured"))
			return
		}
		log := logging.OrNop(e.Logger)

		prompt := BuildModelInput(req)
		log.Debug("synthesis prompt", zap.Int("papers", len(req.Papers)), zap.Int("bytes", len(prompt)))

		chunks := 0
		for text, err := range e.Generator.GenerateStream(ctx, prompt, Sampling) {
			if err != nil {
				yield("", err)
				return
			}
			if text == "" {
				continue
			}
			chunks++
			if e.OnChunk != nil {
				e.OnChunk(text)
			}
			if !yield(text, nil) {
				log.Debug("answer stream stopped by consumer", zap.Int("chunks", chunks))
				return
			}
		}
		log.Debug("answer stream complete", zap.Int("chunks", chunks))
	}
}

// Collect drains seq and returns the concatenated answer.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for chunk, err := range seq {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
	return b.String(), nil
}
