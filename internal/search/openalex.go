// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

const (
	openAlexService    = "OpenAlex"
	openAlexMaxPerPage = 200
)

// OpenAlexBackend queries the OpenAlex API. It needs no credential.
type OpenAlexBackend struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string
	Limiter   *rate.Limiter
}

// NewOpenAlexBackend builds an OpenAlex backend from cfg.
func NewOpenAlexBackend(cfg types.RetrievalConfig) *OpenAlexBackend {
	return &OpenAlexBackend{
		Client:    httpClient(cfg.HTTPConfig),
		Email:     cfg.OpenAlexEmail,
		UserAgent: cfg.UserAgent,
		Limiter:   newLimiter(cfg.RequestsPerSecond),
	}
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return string(types.SourceOpenAlex) }

// Retrieve queries OpenAlex and maps works through the same normalization
// and citation path as CORE results.
func (b *OpenAlexBackend) Retrieve(ctx context.Context, query types.BooleanQuery, limit, offset int) ([]types.PaperRecord, error) {
	if err := checkArgs(query, limit, offset); err != nil {
		return nil, err
	}

	plan := openAlexPage(limit, offset)
	var works []openAlexWork
	for i := range plan.pages {
		batch, err := b.fetchPage(ctx, query, plan.perPage, plan.page+i)
		if err != nil {
			return nil, err
		}
		works = append(works, batch...)
		if len(batch) < plan.perPage {
			break
		}
	}

	if plan.skip < len(works) {
		works = works[plan.skip:]
	} else {
		works = nil
	}
	if len(works) > limit {
		works = works[:limit]
	}

	papers := make([]types.PaperRecord, 0, len(works))
	for i, work := range works {
		rec, err := NewRecord(work.rawWork())
		if err != nil {
			return nil, apperr.WrapUpstream(openAlexService, fmt.Sprintf("result %d", i), err)
		}
		papers = append(papers, rec)
	}
	return papers, nil
}

// openAlexPlan is the page window covering one limit/offset request: pages
// consecutive pages of perPage works starting at page, of which the first
// skip works are dropped.
type openAlexPlan struct {
	perPage, page, pages, skip int
}

// openAlexPage maps limit/offset onto OpenAlex page numbering. An offset that
// is a multiple of limit is a single page. Otherwise the first offset+limit
// works are fetched as one page when they fit, or pages of size limit are
// walked from the one containing offset.
func openAlexPage(limit, offset int) openAlexPlan {
	if limit <= openAlexMaxPerPage && offset%limit == 0 {
		return openAlexPlan{perPage: limit, page: offset/limit + 1, pages: 1}
	}
	if offset+limit <= openAlexMaxPerPage {
		return openAlexPlan{perPage: offset + limit, page: 1, pages: 1, skip: offset}
	}
	perPage := min(limit, openAlexMaxPerPage)
	skip := offset % perPage
	return openAlexPlan{
		perPage: perPage,
		page:    offset/perPage + 1,
		pages:   (skip + limit + perPage - 1) / perPage,
		skip:    skip,
	}
}

// fetchPage requests one page of search results.
func (b *OpenAlexBackend) fetchPage(ctx context.Context, query types.BooleanQuery, perPage, page int) ([]openAlexWork, error) {
	params := url.Values{
		"search":   {NativeSyntax(query)},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	reqURL := openAlexSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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
		return nil, apperr.WrapUpstream(openAlexService, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(openAlexService, resp.StatusCode, "search failed")
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, apperr.WrapUpstream(openAlexService, "decoding response", err)
	}
	return oar.Results, nil
}

// rawWork maps an OpenAlex work onto the raw result shape: reconstructed
// abstract, open-access URL as download link, landing page as sole link,
// no full text.
func (w openAlexWork) rawWork() types.RawWork {
	raw := types.RawWork{
		Title:   types.StringPtr(w.Title),
		Authors: []types.Author{},
		Links:   []types.Link{},
	}
	if abs := reconstructAbstract(w.AbstractInvertedIndex); abs != "" {
		raw.Abstract = types.StringPtr(abs)
	}
	if w.OpenAccess.OAURL != "" {
		raw.DownloadURL = types.StringPtr(w.OpenAccess.OAURL)
	}
	for _, authorship := range w.Authorships {
		if authorship.Author.DisplayName != "" {
			raw.Authors = append(raw.Authors, types.Author{Name: authorship.Author.DisplayName})
		}
	}
	if w.DOI != "" {
		raw.DOI = types.StringPtr(strings.TrimPrefix(w.DOI, "https://doi.org/"))
	}
	if w.ID != "" {
		raw.Links = append(raw.Links, types.Link{Type: "display", URL: w.ID})
	}
	if w.PublicationYear > 0 {
		raw.YearPublished = json.RawMessage(strconv.Itoa(w.PublicationYear))
	}
	return raw
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}
