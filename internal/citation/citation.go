// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation renders best-effort MLA-style citations for raw
// scholarly-search results. It does not aim for full MLA compliance: the
// output is author clause, quoted title, year, and a DOI or link locator.
package citation

import (
	"regexp"
	"strings"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/pkg/types"
)

const doiResolver = "https://doi.org/"

// lineBreak matches a line break together with the whitespace around it.
var lineBreak = regexp.MustCompile(`[ \t]*\r?\n\s*`)

// Format returns the citation for one raw result. It fails with a
// MissingFieldError when authors, title, or links is absent.
func Format(work types.RawWork) (string, error) {
	if work.Authors == nil {
		return "", apperr.MissingField("authors", "citation source")
	}
	if work.Title == nil {
		return "", apperr.MissingField("title", "citation source")
	}
	if work.Links == nil {
		return "", apperr.MissingField("links", "citation source")
	}

	var b strings.Builder
	b.WriteString(authorClause(work.Authors))
	b.WriteString(`"` + RepairTitle(*work.Title) + `." `)
	if year := work.YearText(); year != "" {
		b.WriteString(year + ", ")
	}
	b.WriteString(locator(work))
	return b.String(), nil
}

// authorClause renders the leading author clause: one author verbatim, two
// authors with the second reordered to "First Last", three or more as
// "First, et al.".
func authorClause(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0].Name + ". "
	case 2:
		return authors[0].Name + ", and " + FirstLast(authors[1].Name) + ". "
	default:
		return authors[0].Name + ", et al. "
	}
}

// FirstLast turns "Last, First" into "First Last". Names without a comma are
// returned unchanged.
func FirstLast(name string) string {
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" {
		return last
	}
	return first + " " + last
}

// RepairTitle joins titles that the source split across lines. Each break and
// the whitespace around it collapse to a single space.
func RepairTitle(title string) string {
	return strings.TrimSpace(lineBreak.ReplaceAllString(title, " "))
}

// locator prefers the DOI, then the first link, then nothing.
func locator(work types.RawWork) string {
	if work.DOI != nil && strings.TrimSpace(*work.DOI) != "" {
		return doiResolver + strings.TrimSpace(*work.DOI)
	}
	if len(work.Links) > 0 && work.Links[0].URL != "" {
		return work.Links[0].URL
	}
	return ""
}
