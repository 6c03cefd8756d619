// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const arxivService = "arXiv"

// ArxivBackend queries the arXiv Atom API. Entry ids are abstract-page links,
// so every download link goes through the abs-to-pdf rewrite.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
	Limiter   *rate.Limiter
}

// NewArxivBackend builds the backend from cfg. arXiv asks clients to keep
// to one request every three seconds; a zero RequestsPerSecond uses that.
func NewArxivBackend(cfg types.RetrievalConfig) *ArxivBackend {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0 / 3
	}
	return &ArxivBackend{
		Client:    httpClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
		Limiter:   newLimiter(rps),
	}
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return string(types.SourceArxiv) }

// Retrieve queries arXiv with start=offset and max_results=limit.
func (b *ArxivBackend) Retrieve(ctx context.Context, query types.BooleanQuery, limit, offset int) ([]types.PaperRecord, error) {
	if err := checkArgs(query, limit, offset); err != nil {
		return nil, err
	}

	params := url.Values{
		"search_query": {arxivSyntax(query)},
		"start":        {strconv.Itoa(offset)},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.WrapUpstream(arxivService, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(arxivService, resp.StatusCode, "search failed")
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperr.WrapUpstream(arxivService, "parsing response", err)
	}

	entries := feed.Entries
	if len(entries) > limit {
		entries = entries[:limit]
	}
	papers := make([]types.PaperRecord, 0, len(entries))
	for i, entry := range entries {
		rec, err := NewRecord(entry.rawWork())
		if err != nil {
			return nil, apperr.WrapUpstream(arxivService, fmt.Sprintf("result %d", i), err)
		}
		papers = append(papers, rec)
	}
	return papers, nil
}

// arxivSyntax translates a BooleanQuery into an arXiv search_query. Each term
// searches all fields and multi-word terms are quoted as phrases. Every
// operator is translated in place, so "(a)|(b)&(c)" becomes
// "all:a OR all:b AND all:c"; arXiv evaluates the operators left to right.
func arxivSyntax(q types.BooleanQuery) string {
	var b strings.Builder
	op := " OR "
	emit := func(clause string) {
		term := strings.TrimSpace(clause)
		term = strings.TrimPrefix(term, "(")
		term = strings.TrimSuffix(term, ")")
		term = strings.Join(strings.Fields(strings.ReplaceAll(term, types.JoinToken, " ")), " ")
		if term == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(op)
		}
		if strings.Contains(term, " ") {
			term = `"` + term + `"`
		}
		b.WriteString("all:" + term)
	}

	s := string(q)
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i : i+1] {
		case types.OrToken:
			emit(s[start:i])
			op, start = " OR ", i+1
		case types.AndToken:
			emit(s[start:i])
			op, start = " AND ", i+1
		}
	}
	emit(s[start:])
	return b.String()
}

func (e arxivEntry) rawWork() types.RawWork {
	title := strings.Join(strings.Fields(e.Title), " ")
	raw := types.RawWork{
		Title:   &title,
		Authors: []types.Author{},
		Links:   []types.Link{},
	}
	if summary := strings.TrimSpace(e.Summary); summary != "" {
		raw.Abstract = &summary
	}
	for _, a := range e.Authors {
		raw.Authors = append(raw.Authors, types.Author{Name: strings.TrimSpace(a.Name)})
	}
	if id := strings.TrimSpace(e.ID); id != "" {
		raw.DownloadURL = &id
		raw.Links = append(raw.Links, types.Link{Type: "display", URL: id})
	}
	if doi := strings.TrimSpace(e.DOI); doi != "" {
		raw.DOI = &doi
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		raw.YearPublished = json.RawMessage(strconv.Itoa(t.Year()))
	}
	return raw
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	DOI       string        `xml:"http://arxiv.org/schemas/atom doi"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
