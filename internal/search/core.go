// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/pkg/types"
)

// coreAPIBase is the CORE v3 API root. Declared as a var so tests can
// substitute an httptest server.
var coreAPIBase = "https://api.core.ac.uk/v3"

const coreService = "CORE"

// coreRequiredKeys must be present on every result; their values may be null.
var coreRequiredKeys = []string{"title", "abstract", "downloadUrl", "fullText", "authors"}

// CoreBackend queries the CORE works search API.
type CoreBackend struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	Limiter   *rate.Limiter
	Logger    *zap.Logger
}

// NewCoreBackend builds a CORE backend. A missing credential is a
// configuration error.
func NewCoreBackend(cfg types.RetrievalConfig) (*CoreBackend, error) {
	if strings.TrimSpace(cfg.CoreAPIKey) == "" {
		return nil, apperr.Configuration("CORE_API_KEY", "set it in the environment, .env, or .secrets/core-api-key")
	}
	return &CoreBackend{
		Client:    httpClient(cfg.HTTPConfig),
		APIKey:    cfg.CoreAPIKey,
		UserAgent: cfg.UserAgent,
		Limiter:   newLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Name returns the backend identifier.
func (b *CoreBackend) Name() string { return string(types.SourceCORE) }

type coreResponse struct {
	TotalHits int                `json:"totalHits"`
	Results   *[]json.RawMessage `json:"results"`
}

// Retrieve sends one search request and normalizes every result. Any result
// missing a required key fails the whole call. No retries are attempted.
func (b *CoreBackend) Retrieve(ctx context.Context, query types.BooleanQuery, limit, offset int) ([]types.PaperRecord, error) {
	if err := checkArgs(query, limit, offset); err != nil {
		return nil, err
	}
	if b.APIKey == "" {
		return nil, apperr.Configuration("CORE_API_KEY", "no credential configured")
	}
	log := logging.OrNop(b.Logger)

	params := url.Values{
		"q":      {NativeSyntax(query)},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	reqURL := coreAPIBase + "/search/works/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	resp, err := b.client().Do(req)
	if err != nil {
		return nil, apperr.WrapUpstream(coreService, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.Upstream(coreService, resp.StatusCode, "%s", strings.TrimSpace(string(body)))
	}

	var cr coreResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, apperr.WrapUpstream(coreService, "decoding response", err)
	}
	if cr.Results == nil {
		return nil, apperr.Upstream(coreService, resp.StatusCode, "response has no results")
	}
	results := *cr.Results
	log.Debug("core search", zap.String("q", params.Get("q")), zap.Int("total_hits", cr.TotalHits), zap.Int("results", len(results)))

	if len(results) > limit {
		results = results[:limit]
	}

	papers := make([]types.PaperRecord, 0, len(results))
	for i, raw := range results {
		rec, err := decodeCoreWork(raw)
		if err != nil {
			return nil, apperr.WrapUpstream(coreService, fmt.Sprintf("result %d", i), err)
		}
		papers = append(papers, rec)
	}
	return papers, nil
}

// decodeCoreWork checks required keys and normalizes one result.
func decodeCoreWork(raw json.RawMessage) (types.PaperRecord, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return types.PaperRecord{}, fmt.Errorf("decoding result: %w", err)
	}
	for _, k := range coreRequiredKeys {
		if _, ok := keys[k]; !ok {
			return types.PaperRecord{}, apperr.MissingField(k, "CORE work")
		}
	}

	var work types.RawWork
	if err := json.Unmarshal(raw, &work); err != nil {
		return types.PaperRecord{}, fmt.Errorf("decoding result: %w", err)
	}
	return NewRecord(work)
}

func (b *CoreBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}
