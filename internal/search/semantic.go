// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/httputil"
	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticService     = "Semantic Scholar"
	semanticBatchFields = "abstract,tldr,url,s2FieldsOfStudy"
)

// SemanticScholarBackend is the secondary scholarly-graph path. It is not
// part of the main pipeline. The search endpoint frequently answers with a
// rate-limit message instead of data, so both calls retry until the payload
// is well-formed, bounded by MaxAttempts.
type SemanticScholarBackend struct {
	Client      *http.Client
	APIKey      string
	UserAgent   string
	MaxAttempts int
	Limiter     *rate.Limiter
	Logger      *zap.Logger
}

// NewSemanticScholarBackend builds the backend from cfg.
func NewSemanticScholarBackend(cfg types.ScholarGraphConfig) *SemanticScholarBackend {
	return &SemanticScholarBackend{
		Client:      httpClient(cfg.HTTPConfig),
		APIKey:      cfg.APIKey,
		UserAgent:   cfg.UserAgent,
		MaxAttempts: cfg.MaxAttempts,
		Limiter:     newLimiter(cfg.RequestsPerSecond),
	}
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Search finds up to limit papers for query and enriches them with abstract,
// TLDR, URL and fields of study from the batch endpoint. Order follows the
// search response.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, limit int) ([]types.ScholarPaper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty Semantic Scholar query", apperr.ErrInvalidRequest)
	}
	limit = limitOrDefault(limit)
	log := logging.OrNop(b.Logger)

	hits, err := b.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []types.ScholarPaper{}, nil
	}
	log.Debug("semantic scholar search", zap.String("query", query), zap.Int("hits", len(hits)))

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.PaperID
	}
	details, err := b.batch(ctx, ids)
	if err != nil {
		return nil, err
	}

	papers := make([]types.ScholarPaper, 0, len(hits))
	for i, h := range hits {
		p := types.ScholarPaper{ID: h.PaperID, Title: h.Title}
		if i < len(details) && details[i] != nil {
			d := details[i]
			p.Abstract = d.Abstract
			p.URL = d.URL
			if d.TLDR != nil {
				p.TLDR = d.TLDR.Text
			}
			p.Fields = joinFields(d.FieldsOfStudy)
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func (b *SemanticScholarBackend) search(ctx context.Context, query string, limit int) ([]semanticHit, error) {
	params := url.Values{
		"query": {query},
		"limit": {strconv.Itoa(limit)},
	}
	reqURL := semanticAPIBase + "/paper/search?" + params.Encode()

	newReq := func() (*http.Request, error) {
		if err := wait(ctx, b.Limiter); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		b.setHeaders(req)
		return req, nil
	}

	_, body, err := httputil.DoUntil(ctx, b.client(), newReq, b.MaxAttempts, hasDataKey)
	if err != nil {
		return nil, apperr.WrapUpstream(semanticService, "paper search", err)
	}

	var sr semanticSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, apperr.WrapUpstream(semanticService, "decoding search response", err)
	}
	if len(sr.Data) > limit {
		sr.Data = sr.Data[:limit]
	}
	return sr.Data, nil
}

func (b *SemanticScholarBackend) batch(ctx context.Context, ids []string) ([]*semanticDetail, error) {
	payload, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("encoding batch request: %w", err)
	}
	reqURL := semanticAPIBase + "/paper/batch?" + url.Values{"fields": {semanticBatchFields}}.Encode()

	newReq := func() (*http.Request, error) {
		if err := wait(ctx, b.Limiter); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		b.setHeaders(req)
		return req, nil
	}

	_, body, err := httputil.DoUntil(ctx, b.client(), newReq, b.MaxAttempts, isJSONArray)
	if err != nil {
		return nil, apperr.WrapUpstream(semanticService, "paper batch", err)
	}

	var details []*semanticDetail
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, apperr.WrapUpstream(semanticService, "decoding batch response", err)
	}
	return details, nil
}

func (b *SemanticScholarBackend) setHeaders(req *http.Request) {
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}
}

func (b *SemanticScholarBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}

// hasDataKey accepts a search payload that is a JSON object with a "data"
// key. Rate-limit answers carry only a "message" key.
func hasDataKey(status int, body []byte) bool {
	if status != http.StatusOK {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return false
	}
	_, ok := obj["data"]
	return ok
}

// isJSONArray accepts a batch payload that decodes as a JSON array.
func isJSONArray(status int, body []byte) bool {
	if status != http.StatusOK {
		return false
	}
	var arr []json.RawMessage
	return json.Unmarshal(body, &arr) == nil
}

// joinFields returns the unique categories in order, comma-joined.
func joinFields(fields []semanticField) string {
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if f.Category == "" || seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		out = append(out, f.Category)
	}
	return strings.Join(out, ", ")
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Total int           `json:"total"`
	Data  []semanticHit `json:"data"`
}

type semanticHit struct {
	PaperID string `json:"paperId"`
	Title   string `json:"title"`
}

type semanticDetail struct {
	PaperID       string          `json:"paperId"`
	Abstract      string          `json:"abstract"`
	URL           string          `json:"url"`
	TLDR          *semanticTLDR   `json:"tldr"`
	FieldsOfStudy []semanticField `json:"s2FieldsOfStudy"`
}

type semanticTLDR struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type semanticField struct {
	Category string `json:"category"`
	Source   string `json:"source"`
}
