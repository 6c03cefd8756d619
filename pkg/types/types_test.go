// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBooleanQuery(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
		want    BooleanQuery
	}{
		{"single words", []string{"transformers", "attention", "efficiency", "long-context"},
			"(transformers)|(attention)|(efficiency)|(long-context)"},
		{"phrases joined", []string{"machine learning", "graph  neural networks"},
			"(machine+learning)|(graph+neural+networks)"},
		{"empty phrases skipped", []string{"", "nlp", "   "}, "(nlp)"},
		{"single phrase", []string{"protein folding"}, "(protein+folding)"},
		{"no phrases", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBooleanQuery(tt.phrases))
		})
	}
}

func TestBooleanQueryTerms(t *testing.T) {
	q := BooleanQuery("(machine+learning)|(nlp)&(graphs)")
	assert.Equal(t, []string{"machine learning", "nlp", "graphs"}, q.Terms())
	assert.False(t, q.IsEmpty())
	assert.True(t, BooleanQuery("").IsEmpty())
	assert.True(t, BooleanQuery("()|()").IsEmpty())
}

func TestRawWorkYearText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`2021`, "2021"},
		{`"2019"`, "2019"},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			w := RawWork{YearPublished: json.RawMessage(tt.raw)}
			assert.Equal(t, tt.want, w.YearText())
		})
	}
}

func TestPaperRecordAccessors(t *testing.T) {
	p := PaperRecord{
		Title:    "T",
		Abstract: StringPtr("abs"),
		Authors:  []string{"Ada", "Grace"},
	}
	assert.Equal(t, "Ada, Grace", p.AuthorList())
	assert.Equal(t, "", p.Link())
	assert.Equal(t, "abs", *p.Content(false))
	assert.Nil(t, p.Content(true))

	p.DownloadLink = StringPtr("https://arxiv.org/pdf/1")
	assert.Equal(t, "https://arxiv.org/pdf/1", p.Link())
}
