// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litgap/pkg/types"
)

// Session is the on-disk record of one gap-finding run. The researcher can
// save a run and reread the answer and sources later without querying APIs.
type Session struct {
	RunID     string             `yaml:"run_id,omitempty"`
	Question  string             `yaml:"question"`
	Query     types.BooleanQuery `yaml:"query"`
	Source    string             `yaml:"source,omitempty"`
	FullText  bool               `yaml:"full_text"`
	Papers    []SessionPaper     `yaml:"papers"`
	Answer    string             `yaml:"answer"`
	Timestamp time.Time          `yaml:"timestamp"`
}

// SessionPaper is the subset of a PaperRecord kept in a session file.
type SessionPaper struct {
	Title    string `yaml:"title"`
	Link     string `yaml:"link,omitempty"`
	Citation string `yaml:"citation"`
}

// SessionPapers extracts the stored subset of each paper.
func SessionPapers(papers []types.PaperRecord) []SessionPaper {
	out := make([]SessionPaper, len(papers))
	for i, p := range papers {
		out[i] = SessionPaper{Title: p.Title, Link: p.Link(), Citation: p.Citation}
	}
	return out
}

// WriteSession saves s to a YAML file. A zero timestamp is set to now.
func WriteSession(path string, s Session) error {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSession loads a previously saved session file from disk.
func ReadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return &s, nil
}
