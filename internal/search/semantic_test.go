// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/internal/httputil"
	"github.com/pdiddy/litgap/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func useSemantic(t *testing.T, ts *httptest.Server) {
	t.Helper()
	old := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() { semanticAPIBase = old })
}

const sampleBatchJSON = `[
  {
    "paperId": "p1",
    "abstract": "We propose the Transformer.",
    "url": "https://www.semanticscholar.org/paper/p1",
    "tldr": {"model": "tldr@v2.0.0", "text": "Attention replaces recurrence."},
    "s2FieldsOfStudy": [
      {"category": "Computer Science", "source": "external"},
      {"category": "Computer Science", "source": "s2-fos-model"},
      {"category": "Mathematics", "source": "s2-fos-model"}
    ]
  },
  null
]`

// semanticServer answers the search endpoint with rateLimited "message"
// payloads before returning data, and the batch endpoint with sampleBatchJSON.
func semanticServer(t *testing.T, rateLimited int32, searchCalls, batchCalls *int32, gotIDs *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/paper/search":
			n := atomic.AddInt32(searchCalls, 1)
			if n <= rateLimited {
				fmt.Fprint(w, `{"message": "Too Many Requests. Please wait and try again."}`)
				return
			}
			fmt.Fprint(w, `{"total": 2, "data": [{"paperId": "p1", "title": "Attention Is All You Need"}, {"paperId": "p2", "title": "BERT"}]}`)
		case "/paper/batch":
			atomic.AddInt32(batchCalls, 1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, semanticBatchFields, r.URL.Query().Get("fields"))
			var body struct {
				IDs []string `json:"ids"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*gotIDs = body.IDs
			fmt.Fprint(w, sampleBatchJSON)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestSemanticScholarSearch(t *testing.T) {
	var searchCalls, batchCalls int32
	var ids []string
	ts := semanticServer(t, 0, &searchCalls, &batchCalls, &ids)
	defer ts.Close()
	useSemantic(t, ts)

	b := &SemanticScholarBackend{Client: ts.Client(), APIKey: "s2-key"}
	papers, err := b.Search(context.Background(), "attention transformers", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2"}, ids)
	require.Len(t, papers, 2)
	assert.Equal(t, types.ScholarPaper{
		ID:       "p1",
		Title:    "Attention Is All You Need",
		Abstract: "We propose the Transformer.",
		TLDR:     "Attention replaces recurrence.",
		URL:      "https://www.semanticscholar.org/paper/p1",
		Fields:   "Computer Science, Mathematics",
	}, papers[0])
	assert.Equal(t, types.ScholarPaper{ID: "p2", Title: "BERT"}, papers[1])
}

func TestSemanticScholarRetriesUntilData(t *testing.T) {
	var searchCalls, batchCalls int32
	var ids []string
	ts := semanticServer(t, 2, &searchCalls, &batchCalls, &ids)
	defer ts.Close()
	useSemantic(t, ts)

	b := &SemanticScholarBackend{Client: ts.Client(), MaxAttempts: 5}
	papers, err := b.Search(context.Background(), "attention", 10)
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&searchCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&batchCalls))
}

func TestSemanticScholarRetryIsBounded(t *testing.T) {
	var searchCalls, batchCalls int32
	var ids []string
	ts := semanticServer(t, 100, &searchCalls, &batchCalls, &ids)
	defer ts.Close()
	useSemantic(t, ts)

	b := &SemanticScholarBackend{Client: ts.Client(), MaxAttempts: 3}
	_, err := b.Search(context.Background(), "attention", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstream))

	var exhausted *httputil.ExhaustedError
	assert.ErrorAs(t, err, &exhausted)
	assert.Equal(t, int32(3), atomic.LoadInt32(&searchCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&batchCalls))
}

func TestSemanticScholarRequestHeaders(t *testing.T) {
	var gotKey, gotQuery, gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.Query().Get("query")
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"total": 0, "data": []}`)
	}))
	defer ts.Close()
	useSemantic(t, ts)

	b := &SemanticScholarBackend{Client: ts.Client(), APIKey: "secret"}
	papers, err := b.Search(context.Background(), "graph neural networks", 0)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "graph neural networks", gotQuery)
	assert.Equal(t, "10", gotLimit)
}

func TestSemanticScholarEmptyQuery(t *testing.T) {
	b := &SemanticScholarBackend{}
	_, err := b.Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
}

func TestHasDataKey(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   bool
	}{
		{200, `{"data": []}`, true},
		{200, `{"total": 0, "data": null}`, true},
		{200, `{"message": "Too Many Requests"}`, false},
		{429, `{"data": []}`, false},
		{200, `not json`, false},
		{200, `[]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if got := hasDataKey(tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("hasDataKey(%d, %s) = %v, want %v", tt.status, tt.body, got, tt.want)
			}
		})
	}
}

func TestJoinFields(t *testing.T) {
	fields := []semanticField{{Category: "Biology"}, {Category: ""}, {Category: "Medicine"}, {Category: "Biology"}}
	if got := joinFields(fields); got != "Biology, Medicine" {
		t.Errorf("joinFields() = %q, want %q", got, "Biology, Medicine")
	}
	if got := joinFields(nil); got != "" {
		t.Errorf("joinFields(nil) = %q, want empty", got)
	}
}

func TestNewSemanticScholarBackend(t *testing.T) {
	b := NewSemanticScholarBackend(types.ScholarGraphConfig{APIKey: "k", MaxAttempts: 4, RequestsPerSecond: 1})
	assert.Equal(t, "semantic_scholar", b.Name())
	assert.Equal(t, 4, b.MaxAttempts)
	assert.NotNil(t, b.Limiter)
	assert.NotNil(t, b.Client)
}
