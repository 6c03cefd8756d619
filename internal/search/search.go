// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves papers for a boolean keyword query and normalizes
// them into PaperRecords with citations. The CORE backend is the primary
// source; OpenAlex is a credential-free alternative. The Semantic Scholar
// graph path is a separate, optional strategy that returns ScholarPapers.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/citation"
	"github.com/pdiddy/litgap/pkg/types"
)

// DefaultLimit is used when the configuration sets no limit.
const DefaultLimit = 10

// Retriever runs one paginated search against a scholarly-search API. Each
// backend (CORE, OpenAlex, arXiv) implements this interface per the Strategy pattern.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, query types.BooleanQuery, limit, offset int) ([]types.PaperRecord, error)
}

// NewRetriever builds the backend selected by cfg.Source.
func NewRetriever(cfg types.RetrievalConfig) (Retriever, error) {
	switch cfg.Source {
	case "", types.SourceCORE:
		return NewCoreBackend(cfg)
	case types.SourceOpenAlex:
		return NewOpenAlexBackend(cfg), nil
	case types.SourceArxiv:
		return NewArxivBackend(cfg), nil
	default:
		return nil, apperr.Configuration("retrieval.source", fmt.Sprintf("unknown source %q (want core, openalex or arxiv)", cfg.Source))
	}
}

// checkArgs rejects requests that must not reach the network.
func checkArgs(query types.BooleanQuery, limit, offset int) error {
	if query.IsEmpty() {
		return fmt.Errorf("%w: boolean query has no terms", apperr.ErrInvalidRequest)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", apperr.ErrInvalidRequest, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", apperr.ErrInvalidRequest, offset)
	}
	return nil
}

// NativeSyntax translates a BooleanQuery into the keyword syntax shared by
// CORE and OpenAlex: join tokens become spaces and the operators become OR
// and AND. Parentheses are kept.
func NativeSyntax(q types.BooleanQuery) string {
	return nativeReplacer.Replace(string(q))
}

var nativeReplacer = strings.NewReplacer(
	types.JoinToken, " ",
	types.OrToken, " OR ",
	types.AndToken, " AND ",
)

// NewRecord normalizes one raw result and computes its citation from the
// same raw work.
func NewRecord(raw types.RawWork) (types.PaperRecord, error) {
	cite, err := citation.Format(raw)
	if err != nil {
		return types.PaperRecord{}, err
	}

	rec := types.PaperRecord{
		Title:    *raw.Title,
		Abstract: raw.Abstract,
		Year:     raw.YearText(),
		Citation: cite,
	}
	for _, a := range raw.Authors {
		rec.Authors = append(rec.Authors, a.Name)
	}
	if raw.DownloadURL != nil {
		rec.DownloadLink = types.StringPtr(RewriteAbstractLink(*raw.DownloadURL))
	}
	if raw.FullText != nil {
		rec.FullText = types.StringPtr(StripNoise(*raw.FullText))
	}
	if raw.DOI != nil {
		rec.DOI = strings.TrimSpace(*raw.DOI)
	}
	return rec, nil
}

// RewriteAbstractLink points an abstract-page link at the PDF by turning the
// first "abs" path segment into "pdf". Links whose first abs/pdf segment is
// already "pdf", or that have neither, are returned unchanged.
func RewriteAbstractLink(link string) string {
	start := 0
	if i := strings.Index(link, "://"); i >= 0 {
		j := strings.IndexByte(link[i+3:], '/')
		if j < 0 {
			return link
		}
		start = i + 3 + j
	}
	end := len(link)
	if k := strings.IndexAny(link[start:], "?#"); k >= 0 {
		end = start + k
	}

	segments := strings.Split(link[start:end], "/")
	for i, seg := range segments {
		switch seg {
		case "pdf":
			return link
		case "abs":
			segments[i] = "pdf"
			return link[:start] + strings.Join(segments, "/") + link[end:]
		}
	}
	return link
}

// StripNoise removes newlines from full text and replaces every
// space-delimited token starting with "http" by the bare token "http".
// This discards the URLs themselves.
func StripNoise(text string) string {
	tokens := strings.Split(strings.ReplaceAll(text, "\n", ""), " ")
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "http") {
			tokens[i] = "http"
		}
	}
	return strings.Join(tokens, " ")
}

// newLimiter returns a limiter allowing rps requests per second, or nil when
// pacing is disabled.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func httpClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}

// FormatTable writes papers as a two-column title/link table to w.
func FormatTable(papers []types.PaperRecord, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-70s  %s\n", "#", "Title", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-70s  %s\n", i+1, truncate(oneLine(p.Title), 70), p.Link())
	}

	fmt.Fprintf(w, "\n%d results\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.PaperRecord, w io.Writer) error {
	if papers == nil {
		papers = []types.PaperRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

// FormatSources writes one numbered citation per paper to w.
func FormatSources(papers []types.PaperRecord, w io.Writer) {
	for i, p := range papers {
		fmt.Fprintf(w, "[%d] %s\n", i+1, p.Citation)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
