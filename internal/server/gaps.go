// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/litgap/internal/logging"
	"github.com/pdiddy/litgap/internal/pipeline"
	"github.com/pdiddy/litgap/pkg/types"
)

const maxBodyBytes = 64 << 10

// Event types written to the gaps stream, in order: one query, one papers,
// zero or more chunk, then sources on success or error on failure.
const (
	EventQuery   = "query"
	EventPapers  = "papers"
	EventChunk   = "chunk"
	EventSources = "sources"
	EventError   = "error"
)

// Event is one NDJSON line of the gaps stream.
type Event struct {
	Type    string     `json:"type"`
	RunID   string     `json:"run_id,omitempty"`
	Query   string     `json:"query,omitempty"`
	Papers  []PaperRow `json:"papers,omitempty"`
	Text    string     `json:"text,omitempty"`
	Sources []string   `json:"sources,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// PaperRow is the table view of a retrieved paper.
type PaperRow struct {
	Title    string   `json:"title"`
	Link     string   `json:"link,omitempty"`
	Authors  []string `json:"authors"`
	Year     string   `json:"year,omitempty"`
	Citation string   `json:"citation"`
}

func paperRows(papers []types.PaperRecord) []PaperRow {
	rows := make([]PaperRow, len(papers))
	for i, p := range papers {
		rows[i] = PaperRow{Title: p.Title, Link: p.Link(), Authors: p.Authors, Year: p.Year, Citation: p.Citation}
	}
	return rows
}

// gaps runs the pipeline. Failures before the first event are plain JSON
// errors with a mapped status; once streaming has begun they become an error
// event.
func (s *Server) gaps(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(s.Logger)

	var req pipeline.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if s.Runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not configured")
		return
	}

	res, err := s.Runner.Run(r.Context(), req)
	if err != nil {
		log.Warn("gaps request failed", zap.Error(err))
		writeError(w, errorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	stream := &eventWriter{enc: json.NewEncoder(w), flusher: flusherOf(w)}

	if !stream.send(Event{Type: EventQuery, RunID: res.RunID, Query: string(res.Query)}) {
		return
	}
	if !stream.send(Event{Type: EventPapers, RunID: res.RunID, Papers: paperRows(res.Papers)}) {
		return
	}
	for chunk, err := range res.Answer {
		if err != nil {
			log.Warn("answer stream failed", zap.String("run_id", res.RunID), zap.Error(err))
			stream.send(Event{Type: EventError, RunID: res.RunID, Error: err.Error()})
			return
		}
		if !stream.send(Event{Type: EventChunk, RunID: res.RunID, Text: chunk}) {
			return
		}
	}

	sources := make([]string, len(res.Papers))
	for i, p := range res.Papers {
		sources[i] = p.Citation
	}
	stream.send(Event{Type: EventSources, RunID: res.RunID, Sources: sources})
}

type eventWriter struct {
	enc     *json.Encoder
	flusher http.Flusher
}

// send writes one event and flushes it. It reports false once the client is
// gone so the caller stops pulling the answer.
func (e *eventWriter) send(ev Event) bool {
	if err := e.enc.Encode(ev); err != nil {
		return false
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return true
}

func flusherOf(w http.ResponseWriter) http.Flusher {
	if f, ok := w.(http.Flusher); ok {
		return f
	}
	return nil
}
