// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litmine/pkg/types"
)

// RunFile is the on-disk record of a retrieve run: the query that was sent
// and what came back. It sits next to the stage-one CSV so a researcher can
// tell months later which keywords and sampling produced a dataset.
type RunFile struct {
	Query   RunQuery   `yaml:"query"`
	Summary RunSummary `yaml:"summary"`
}

// RunQuery stores the query parameters in a serializable form.
type RunQuery struct {
	Keywords      string `yaml:"keywords"`
	StartYear     int    `yaml:"start_year"`
	EndYear       int    `yaml:"end_year"`
	SamplePerYear int    `yaml:"sample_per_year"`
}

// RunSummary stores result statistics and a timestamp.
type RunSummary struct {
	Total     int         `yaml:"total"`
	PerYear   map[int]int `yaml:"per_year"`
	Timestamp time.Time   `yaml:"timestamp"`
}

// runFilePath derives the summary path from the CSV path:
// outputs/step1_retrieved.csv -> outputs/step1_retrieved.run.yaml.
func runFilePath(csvPath string) string {
	return strings.TrimSuffix(csvPath, ".csv") + ".run.yaml"
}

func writeRunFile(path string, cfg types.RetrieveConfig, s *Summary) error {
	rf := RunFile{
		Query: RunQuery{
			Keywords:      cfg.Keywords,
			StartYear:     cfg.StartYear,
			EndYear:       cfg.EndYear,
			SamplePerYear: cfg.SamplePerYear,
		},
		Summary: RunSummary{
			Total:     s.Total,
			PerYear:   s.PerYear,
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously written run summary from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
