// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package splitter

import (
	"fmt"
	"io"

	extractpkg "github.com/pdiddy/litmine/internal/extract"
	"github.com/pdiddy/litmine/internal/tabular"
)

// Summary reports per-field hit counts for a split run.
type Summary struct {
	Total  int
	Filled map[string]int
}

// Run reads the extracted CSV, splits each row's raw model output into the
// four clinical field columns, and writes the result. Rows whose output
// matches none of the patterns keep empty fields; that is not an error.
func Run(inPath, outPath string, progress io.Writer) (*Summary, error) {
	table, err := tabular.Read(inPath)
	if err != nil {
		return nil, err
	}
	if err := table.Require(extractpkg.OutputColumn); err != nil {
		return nil, fmt.Errorf("split: %s: %w", inPath, err)
	}

	for _, name := range FieldNames {
		table.AddColumn(name)
	}

	summary := &Summary{Filled: make(map[string]int)}
	for i := 0; i < table.Len(); i++ {
		summary.Total++
		raw := table.Get(i, extractpkg.OutputColumn)
		if raw == "" {
			continue
		}
		for name, value := range Split(raw) {
			table.Set(i, name, value)
			if value != "" {
				summary.Filled[name]++
			}
		}
	}

	if err := tabular.Write(outPath, table); err != nil {
		return nil, err
	}
	fmt.Fprintf(progress, "wrote %s (%d rows)\n", outPath, summary.Total)
	for _, name := range FieldNames {
		fmt.Fprintf(progress, "  %s: %d filled\n", name, summary.Filled[name])
	}
	return summary, nil
}
