// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litgap/pkg/types"
)

func TestToCSLItem(t *testing.T) {
	p := types.PaperRecord{
		Title:        "Attention Is All\n You Need",
		Abstract:     types.StringPtr("We propose the Transformer."),
		DownloadLink: types.StringPtr("https://arxiv.org/pdf/1706.03762"),
		Authors:      []string{"Vaswani, Ashish", "Noam Shazeer", "Plato"},
		Year:         "2017",
		DOI:          "10.5555/3295222.3295349",
	}

	item := toCSLItem(p, 0)

	if item.ID != "10.5555/3295222.3295349" {
		t.Errorf("ID = %q, want DOI", item.ID)
	}
	if item.Type != "article" {
		t.Errorf("Type = %q, want %q", item.Type, "article")
	}
	if item.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", item.Title)
	}
	if item.URL != "https://arxiv.org/pdf/1706.03762" {
		t.Errorf("URL = %q", item.URL)
	}
	if item.Abstract != "We propose the Transformer." {
		t.Errorf("Abstract = %q", item.Abstract)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2017 {
		t.Errorf("Issued = %+v, want 2017", item.Issued)
	}

	want := []CSLName{
		{Family: "Vaswani", Given: "Ashish"},
		{Family: "Shazeer", Given: "Noam"},
		{Literal: "Plato"},
	}
	if len(item.Author) != len(want) {
		t.Fatalf("len(Author) = %d, want %d", len(item.Author), len(want))
	}
	for i := range want {
		if item.Author[i] != want[i] {
			t.Errorf("Author[%d] = %+v, want %+v", i, item.Author[i], want[i])
		}
	}
}

func TestToCSLItemWithoutDOIOrYear(t *testing.T) {
	item := toCSLItem(types.PaperRecord{Title: "Untitled", Year: "n.d."}, 2)

	if item.ID != "paper-3" {
		t.Errorf("ID = %q, want positional id", item.ID)
	}
	if item.Issued != nil {
		t.Errorf("Issued = %+v, want nil for non-numeric year", item.Issued)
	}
	if item.DOI != "" || item.URL != "" {
		t.Errorf("DOI/URL should be empty, got %q / %q", item.DOI, item.URL)
	}
}

func TestFormatCSL(t *testing.T) {
	papers := []types.PaperRecord{
		{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, Year: "2017", DOI: "10.1/x"},
		{Title: "BERT", Authors: []string{"Devlin, Jacob"}, Year: "2018"},
	}

	var buf bytes.Buffer
	if err := FormatCSL(papers, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}

	s := buf.String()
	if strings.Count(s, "type: article") != 2 {
		t.Errorf("expected 2 articles, got:\n%s", s)
	}
	if !strings.Contains(s, "DOI: 10.1/x") {
		t.Error("CSL output should contain the DOI")
	}

	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(items) != 2 || items[1].Author[0].Family != "Devlin" {
		t.Errorf("items = %+v", items)
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"", CSLName{}},
		{"Plato", CSLName{Literal: "Plato"}},
		{"Ada Lovelace", CSLName{Given: "Ada", Family: "Lovelace"}},
		{"Lovelace, Ada", CSLName{Given: "Ada", Family: "Lovelace"}},
		{"Jean-Paul van der Berg", CSLName{Given: "Jean-Paul van der", Family: "Berg"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseAuthorName(tt.in); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
