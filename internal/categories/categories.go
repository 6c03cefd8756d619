// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categories holds the discipline, field and topic lookup table used
// to pick a research question without typing one.
package categories

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed categories.yaml
var defaultTable []byte

// Category is one row of the table.
type Category struct {
	Discipline string `json:"discipline" yaml:"discipline"`
	Field      string `json:"field" yaml:"field"`
	Topic      string `json:"topic" yaml:"topic"`
}

// Table is an immutable set of rows.
type Table struct {
	rows []Category
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("categories: embedded table is invalid: %v", err))
	}
	return t
}

// Load reads a table from path. An empty path returns the built-in table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML list of rows. Every row needs all three columns.
func Parse(data []byte) (*Table, error) {
	var rows []Category
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}
	for i, r := range rows {
		if strings.TrimSpace(r.Discipline) == "" || strings.TrimSpace(r.Field) == "" || strings.TrimSpace(r.Topic) == "" {
			return nil, fmt.Errorf("row %d: discipline, field and topic are required", i+1)
		}
	}
	return &Table{rows: rows}, nil
}

// Rows returns a copy of every row.
func (t *Table) Rows() []Category {
	return slices.Clone(t.rows)
}

// Disciplines returns the sorted unique disciplines.
func (t *Table) Disciplines() []string {
	return t.unique(func(Category) bool { return true }, func(c Category) string { return c.Discipline })
}

// Fields returns the sorted unique fields within discipline.
func (t *Table) Fields(discipline string) []string {
	return t.unique(
		func(c Category) bool { return c.Discipline == discipline },
		func(c Category) string { return c.Field },
	)
}

// Topics returns the sorted unique topics within discipline and field. A
// field name shared by two disciplines does not mix their topics.
func (t *Table) Topics(discipline, field string) []string {
	return t.unique(
		func(c Category) bool { return c.Discipline == discipline && c.Field == field },
		func(c Category) string { return c.Topic },
	)
}

func (t *Table) unique(keep func(Category) bool, col func(Category) string) []string {
	out := []string{}
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, col(r))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
