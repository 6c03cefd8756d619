// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the gap-finding flow for one request: question to
// boolean query, query to papers, papers to a streamed answer. Stages run
// strictly in sequence and all state is scoped to the request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/internal/metrics"
	"github.com/pdiddy/litgap/pkg/types"
)

// Stage names used in logs and metrics.
const (
	StageQuery     = "query"
	StageRetrieve  = "retrieve"
	StageSynthesis = "synthesis"
)

// QuerySynthesizer turns a question into a boolean query.
type QuerySynthesizer interface {
	Synthesize(ctx context.Context, question string) (types.BooleanQuery, error)
}

// Retriever fetches papers for a boolean query.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, query types.BooleanQuery, limit, offset int) ([]types.PaperRecord, error)
}

// Answerer streams an answer for a synthesis request.
type Answerer interface {
	Answer(ctx context.Context, req types.SynthesisRequest) iter.Seq2[string, error]
}

// Request is one pipeline invocation.
type Request struct {
	Question string `json:"question" validate:"required"`
	Limit    int    `json:"limit" validate:"min=1,max=100"`
	Offset   int    `json:"offset" validate:"min=0"`
	FullText bool   `json:"full_text"`
}

// Result is the outcome of the blocking stages plus the lazy answer.
// Answer sends nothing until ranged over and can be ranged once.
type Result struct {
	RunID  string
	Query  types.BooleanQuery
	Papers []types.PaperRecord
	Answer iter.Seq2[string, error]
	Cached bool
}

// Pipeline wires the three stages together.
type Pipeline struct {
	Synthesizer QuerySynthesizer
	Retriever   Retriever
	Engine      Answerer
	Cache       *Cache
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

var validate = validator.New()

// Validate fills defaults and checks req. Failures wrap ErrInvalidRequest.
func Validate(req *Request) error {
	req.Question = strings.TrimSpace(req.Question)
	if req.Limit == 0 {
		req.Limit = 10
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", apperr.ErrInvalidRequest, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", apperr.ErrInvalidRequest, err)
	}
	return nil
}

// Run executes query synthesis and retrieval, and returns the answer stream
// without starting it. The first failing stage ends the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := Validate(&req); err != nil {
		return nil, err
	}
	if p.Synthesizer == nil || p.Retriever == nil || p.Engine == nil {
		return nil, apperr.Configuration("pipeline", "synthesizer, retriever and engine must all be set")
	}

	res := &Result{RunID: uuid.NewString()}
	log := logging.OrNop(p.Logger).With(zap.String("run_id", res.RunID))

	key := CacheKey(p.Retriever.Name(), req)
	entry, hit := p.Cache.Get(key)
	p.Metrics.CacheHit(hit)
	if hit {
		log.Info("cache hit", zap.String("query", string(entry.Query)))
		res.Query, res.Papers, res.Cached = entry.Query, entry.Papers, true
	} else {
		start := time.Now()
		query, err := p.Synthesizer.Synthesize(ctx, req.Question)
		p.Metrics.ObserveStage(StageQuery, start, err)
		if err != nil {
			log.Warn("query synthesis failed", zap.Error(err))
			return nil, err
		}
		log.Info("boolean query", zap.String("query", string(query)))

		start = time.Now()
		papers, err := p.Retriever.Retrieve(ctx, query, req.Limit, req.Offset)
		p.Metrics.ObserveStage(StageRetrieve, start, err)
		if err != nil {
			log.Warn("retrieval failed", zap.String("source", p.Retriever.Name()), zap.Error(err))
			return nil, err
		}
		p.Metrics.ObservePapers(len(papers))
		log.Info("papers retrieved", zap.String("source", p.Retriever.Name()), zap.Int("count", len(papers)))

		res.Query, res.Papers = query, papers
		p.Cache.Set(key, CacheEntry{Query: query, Papers: papers})
	}

	res.Answer = p.answer(ctx, log, types.SynthesisRequest{
		Question: req.Question,
		Papers:   res.Papers,
		FullText: req.FullText,
	})
	return res, nil
}

func (p *Pipeline) answer(ctx context.Context, log *zap.Logger, req types.SynthesisRequest) iter.Seq2[string, error] {
	inner := p.Engine.Answer(ctx, req)
	return func(yield func(string, error) bool) {
		start := time.Now()
		var failed error
		defer func() { p.Metrics.ObserveStage(StageSynthesis, start, failed) }()
		for chunk, err := range inner {
			if err != nil {
				failed = err
				log.Warn("answer stream failed", zap.Error(err))
				yield("", err)
				return
			}
			p.Metrics.IncChunks()
			if !yield(chunk, nil) {
				return
			}
		}
	}
}
