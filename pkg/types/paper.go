// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Author is one entry of a raw result's authors list.
type Author struct {
	Name string `json:"name" yaml:"name"`
}

// Link is one entry of a raw result's links list.
type Link struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	URL  string `json:"url" yaml:"url"`
}

// RawWork is one scholarly-search result as delivered by the API, before
// normalization. Nullable fields are pointers; a nil slice means the key was
// absent or null.
type RawWork struct {
	Title         *string         `json:"title"`
	Abstract      *string         `json:"abstract"`
	DownloadURL   *string         `json:"downloadUrl"`
	FullText      *string         `json:"fullText"`
	Authors       []Author        `json:"authors"`
	DOI           *string         `json:"doi"`
	Links         []Link          `json:"links"`
	YearPublished json.RawMessage `json:"yearPublished"`
}

// YearText renders yearPublished verbatim: a JSON string is unquoted, any
// other JSON value is used as written. Null or absent yields "".
func (w RawWork) YearText() string {
	raw := bytes.TrimSpace(w.YearPublished)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// PaperRecord is one retrieved work after normalization. It is immutable once
// returned by a retriever; Citation is derived from the same raw work as the
// other fields and is never set independently.
type PaperRecord struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is nil when the source reported no abstract.
	Abstract *string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// FullText is the noise-reduced body text; nil when unavailable.
	FullText *string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// DownloadLink points at the paper itself (arXiv abstract pages rewritten to PDF).
	DownloadLink *string `json:"download_link,omitempty" yaml:"download_link,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year as reported by the source.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the bare DOI (no resolver prefix).
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Citation is the MLA-style citation string.
	Citation string `json:"citation" yaml:"citation"`
}

// AuthorList joins the authors with ", " as shown in tables and prompts.
func (p PaperRecord) AuthorList() string {
	return strings.Join(p.Authors, ", ")
}

// Link returns the download link or "".
func (p PaperRecord) Link() string {
	if p.DownloadLink == nil {
		return ""
	}
	return *p.DownloadLink
}

// Content returns the full text when fullText is set, otherwise the abstract.
// It returns nil when the selected field is unavailable.
func (p PaperRecord) Content(fullText bool) *string {
	if fullText {
		return p.FullText
	}
	return p.Abstract
}

// SynthesisRequest is the input of one Synthesis Engine invocation.
type SynthesisRequest struct {
	Question string
	Papers   []PaperRecord
	FullText bool
}

// ScholarPaper is one result of the scholarly-graph search path.
type ScholarPaper struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	TLDR     string `json:"tldr,omitempty" yaml:"tldr,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Fields   string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
