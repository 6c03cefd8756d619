// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litgap pipeline:
// boolean queries, raw and normalized paper records, synthesis requests, and
// configuration.
package types

import (
	"strings"
)

// Boolean query tokens. Terms are wrapped in parentheses, phrase words are
// joined with JoinToken, and terms are combined with OrToken or AndToken.
const (
	JoinToken = "+"
	OrToken   = "|"
	AndToken  = "&"
)

// BooleanQuery is an OR-of-terms expression such as
// "(transformers)|(long+context)".
type BooleanQuery string

// String returns the expression text.
func (q BooleanQuery) String() string { return string(q) }

// IsEmpty reports whether the expression has no terms.
func (q BooleanQuery) IsEmpty() bool {
	return len(q.Terms()) == 0
}

// Terms returns the phrases of the expression in order, with parentheses
// removed and join tokens turned back into spaces. Operators are dropped.
func (q BooleanQuery) Terms() []string {
	var terms []string
	for _, clause := range strings.Split(strings.ReplaceAll(string(q), AndToken, OrToken), OrToken) {
		term := strings.TrimSpace(clause)
		term = strings.TrimPrefix(term, "(")
		term = strings.TrimSuffix(term, ")")
		term = strings.TrimSpace(strings.ReplaceAll(term, JoinToken, " "))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// NewBooleanQuery builds an OR expression from phrases. Whitespace runs inside
// a phrase become JoinToken; empty phrases are skipped.
func NewBooleanQuery(phrases []string) BooleanQuery {
	var b strings.Builder
	for _, p := range phrases {
		words := strings.Fields(p)
		if len(words) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(OrToken)
		}
		b.WriteString("(")
		b.WriteString(strings.Join(words, JoinToken))
		b.WriteString(")")
	}
	return BooleanQuery(b.String())
}
