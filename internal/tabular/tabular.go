// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tabular reads and writes the CSV tables that flow between pipeline
// stages. A Table is a header row plus data rows; columns are addressed by
// name so stages stay independent of column order.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMissingColumn marks a table that lacks a column a stage requires.
var ErrMissingColumn = errors.New("missing required column")

// Table is an in-memory CSV table.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	t := &Table{Header: append([]string(nil), header...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		t.index[name] = i
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Col returns the index of the named column, or -1 if absent.
func (t *Table) Col(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// Get returns the value of the named column in the given row. Missing
// columns and out-of-range rows return the empty string.
func (t *Table) Get(row int, name string) string {
	i := t.Col(name)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Set assigns the value of the named column in the given row. Rows shorter
// than the header are padded first.
func (t *Table) Set(row int, name, value string) {
	i := t.Col(name)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	for len(t.Rows[row]) < len(t.Header) {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][i] = value
}

// Append adds a data row. Short rows are padded to the header width.
func (t *Table) Append(row []string) {
	r := append([]string(nil), row...)
	for len(r) < len(t.Header) {
		r = append(r, "")
	}
	t.Rows = append(t.Rows, r)
}

// AddColumn appends a new column with empty values in every existing row.
// Adding a column that already exists is a no-op.
func (t *Table) AddColumn(name string) {
	if t.Col(name) >= 0 {
		return
	}
	t.Header = append(t.Header, name)
	t.reindex()
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// Require checks that every named column is present and returns an error
// naming the first missing one. Stages call this before processing so a
// malformed input fails up front rather than mid-run.
func (t *Table) Require(names ...string) error {
	for _, name := range names {
		if t.Col(name) < 0 {
			return fmt.Errorf("tabular: %w %q", ErrMissingColumn, name)
		}
	}
	return nil
}

// Read loads a CSV file into a Table. The first record is the header.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tabular: %s has no header row", path)
	}

	t := New(records[0])
	for _, rec := range records[1:] {
		t.Append(rec)
	}
	return t, nil
}

// Write saves the table as a CSV file, creating parent directories as
// needed. The whole table is written in one pass at the end of a stage, so
// a failed run never leaves a truncated output behind a complete-looking
// header.
func Write(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tabular: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tabular: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("tabular: write %s: %w", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("tabular: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("tabular: flush %s: %w", path, err)
	}
	return f.Close()
}
