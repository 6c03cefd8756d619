// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/pkg/types"
)

// --- Query translation ---

func TestNativeSyntax(t *testing.T) {
	tests := []struct {
		in   types.BooleanQuery
		want string
	}{
		{"(transformers)|(attention)", "(transformers) OR (attention)"},
		{"(machine+learning)|(graph+neural+networks)", "(machine learning) OR (graph neural networks)"},
		{"(a)&(b+c)", "(a) AND (b c)"},
		{"(single)", "(single)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := NativeSyntax(tt.in); got != tt.want {
				t.Errorf("NativeSyntax(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckArgs(t *testing.T) {
	assert.NoError(t, checkArgs("(a)", 1, 0))
	for name, err := range map[string]error{
		"empty query":     checkArgs("", 10, 0),
		"only parens":     checkArgs("()", 10, 0),
		"zero limit":      checkArgs("(a)", 0, 0),
		"negative offset": checkArgs("(a)", 10, -1),
	} {
		assert.True(t, errors.Is(err, apperr.ErrInvalidRequest), name)
	}
}

// --- Link rewrite ---

func TestRewriteAbstractLink(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://arxiv.org/abs/2301.07041", "https://arxiv.org/pdf/2301.07041"},
		{"http://arxiv.org/abs/2301.07041v2", "http://arxiv.org/pdf/2301.07041v2"},
		{"https://core.ac.uk/download/123.pdf", "https://core.ac.uk/download/123.pdf"},
		{"https://example.org/absolute/path", "https://example.org/absolute/path"},
		{"https://abs.example.org/x/abs/1", "https://abs.example.org/x/pdf/1"},
		{"https://arxiv.org/abs/1?ref=abs", "https://arxiv.org/pdf/1?ref=abs"},
		{"https://arxiv.org/pdf/abs", "https://arxiv.org/pdf/abs"},
		{"https://arxiv.org", "https://arxiv.org"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RewriteAbstractLink(tt.in)
			if got != tt.want {
				t.Errorf("RewriteAbstractLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := RewriteAbstractLink(got); again != got {
				t.Errorf("rewrite not idempotent: %q -> %q", got, again)
			}
		})
	}
}

// --- Full-text noise ---

func TestStripNoise(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"newlines removed", "deep\nlearning\n", "deeplearning"},
		{"url replaced", "see https://example.org/paper for details", "see http for details"},
		{"http prefix only", "visit http://a.b and httpx", "visit http and http"},
		{"embedded url untouched", "(https://x.y)", "(https://x.y)"},
		{"spaces preserved", "a  b", "a  b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripNoise(tt.in); got != tt.want {
				t.Errorf("StripNoise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- Record normalization ---

func TestNewRecord(t *testing.T) {
	raw := types.RawWork{
		Title:         types.StringPtr("Attention Is All You Need"),
		Abstract:      types.StringPtr("We propose the Transformer."),
		DownloadURL:   types.StringPtr("https://arxiv.org/abs/1706.03762"),
		FullText:      types.StringPtr("Code at https://github.com/x\nand more"),
		Authors:       []types.Author{{Name: "Vaswani, Ashish"}, {Name: "Shazeer, Noam"}, {Name: "Parmar, Niki"}},
		DOI:           types.StringPtr(" 10.5555/3295222 "),
		Links:         []types.Link{{Type: "display", URL: "https://core.ac.uk/works/1"}},
		YearPublished: json.RawMessage(`2017`),
	}

	rec, err := NewRecord(raw)
	require.NoError(t, err)

	assert.Equal(t, "Attention Is All You Need", rec.Title)
	assert.Equal(t, "We propose the Transformer.", *rec.Abstract)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", rec.Link())
	assert.Equal(t, "Code at http more", *rec.FullText)
	assert.Equal(t, []string{"Vaswani, Ashish", "Shazeer, Noam", "Parmar, Niki"}, rec.Authors)
	assert.Equal(t, "2017", rec.Year)
	assert.Equal(t, "10.5555/3295222", rec.DOI)
	assert.Equal(t, `Vaswani, Ashish, et al. "Attention Is All You Need." 2017, https://doi.org/10.5555/3295222`, rec.Citation)
}

func TestNewRecordNullableFields(t *testing.T) {
	raw := types.RawWork{
		Title:   types.StringPtr("T"),
		Authors: []types.Author{},
		Links:   []types.Link{},
	}
	rec, err := NewRecord(raw)
	require.NoError(t, err)
	assert.Nil(t, rec.Abstract)
	assert.Nil(t, rec.FullText)
	assert.Nil(t, rec.DownloadLink)
	assert.Equal(t, `"T." `, rec.Citation)
}

func TestNewRecordMissingField(t *testing.T) {
	_, err := NewRecord(types.RawWork{Title: types.StringPtr("T"), Links: []types.Link{}})
	assert.ErrorIs(t, err, apperr.ErrMissingField)
}

// --- Backend selection ---

func TestNewRetriever(t *testing.T) {
	r, err := NewRetriever(types.RetrievalConfig{Source: types.SourceOpenAlex})
	require.NoError(t, err)
	assert.Equal(t, "openalex", r.Name())

	r, err = NewRetriever(types.RetrievalConfig{CoreAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "core", r.Name())

	_, err = NewRetriever(types.RetrievalConfig{Source: types.SourceCORE})
	assert.ErrorIs(t, err, apperr.ErrConfiguration)

	r, err = NewRetriever(types.RetrievalConfig{Source: types.SourceArxiv})
	require.NoError(t, err)
	assert.Equal(t, "arxiv", r.Name())

	_, err = NewRetriever(types.RetrievalConfig{Source: "pubmed"})
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

// --- Output formatting ---

func samplePapers() []types.PaperRecord {
	return []types.PaperRecord{
		{
			Title:        "Attention Is All You Need",
			DownloadLink: types.StringPtr("https://arxiv.org/pdf/1706.03762"),
			Authors:      []string{"Ashish Vaswani"},
			Citation:     `Ashish Vaswani. "Attention Is All You Need." 2017, https://doi.org/10.1/x`,
		},
		{
			Title:    strings.Repeat("Long Title ", 10),
			Citation: `"Long." `,
		},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(samplePapers(), &buf)
	out := buf.String()

	if !strings.Contains(out, "Title") || !strings.Contains(out, "Link") {
		t.Error("table should contain header")
	}
	if !strings.Contains(out, "https://arxiv.org/pdf/1706.03762") {
		t.Error("table should contain the link")
	}
	if !strings.Contains(out, "...") {
		t.Error("long titles should be truncated")
	}
	if !strings.Contains(out, "2 results") {
		t.Error("table should contain the result count")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(samplePapers(), &buf))

	var decoded []types.PaperRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", decoded[0].Link())

	buf.Reset()
	require.NoError(t, FormatJSON(nil, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatSources(t *testing.T) {
	var buf bytes.Buffer
	FormatSources(samplePapers(), &buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[1] Ashish Vaswani."))
	assert.True(t, strings.HasPrefix(lines[1], `[2] "Long."`))
}
