// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the individual stages into the core and full
// pipeline runs. Each stage reads the previous stage's CSV and writes its
// own, so a run can resume from any core stage whose input already exists.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/classify"
	"github.com/pdiddy/litmine/internal/extract"
	"github.com/pdiddy/litmine/internal/qa"
	"github.com/pdiddy/litmine/internal/retrieve"
	"github.com/pdiddy/litmine/internal/splitter"
	"github.com/pdiddy/litmine/pkg/types"
)

// Stage names accepted by the --start-from flag.
const (
	StageRetrieve = "retrieve"
	StageClassify = "classify"
	StageExtract  = "extract"
)

// Paths holds the CSV locations for every stage of one pipeline run.
type Paths struct {
	Retrieved string
	Filtered  string
	Extracted string
	Split     string
	QA        string
	Bank      string
}

// DefaultPaths returns the conventional stage outputs under outDir.
func DefaultPaths(outDir string) Paths {
	return Paths{
		Retrieved: filepath.Join(outDir, "step1_retrieved.csv"),
		Filtered:  filepath.Join(outDir, "step2_filtered.csv"),
		Extracted: filepath.Join(outDir, "step3_extracted.csv"),
		Split:     filepath.Join(outDir, "step3_split.csv"),
		QA:        filepath.Join(outDir, "step4_qa.csv"),
		Bank:      filepath.Join(outDir, "qa_bank.csv"),
	}
}

// Options controls which stages of the full pipeline run.
type Options struct {
	// StartFrom skips earlier core stages and reuses their existing
	// outputs. One of StageRetrieve, StageClassify, StageExtract.
	StartFrom string

	// SkipSplit leaves out the field-splitting stage.
	SkipSplit bool

	// SkipQA leaves out question generation.
	SkipQA bool
}

// Core runs the three essential stages: retrieve, classify, extract.
// Returns the path of the last CSV written.
func Core(ctx context.Context, client chat.Client, cfg types.PipelineConfig, paths Paths, startFrom string, progress io.Writer) (string, error) {
	var current string

	switch startFrom {
	case StageRetrieve, "":
		fmt.Fprintln(progress, "step 1: retrieving abstracts from PubMed")
		if _, err := retrieve.Run(ctx, cfg.Retrieve, paths.Retrieved, progress); err != nil {
			return "", err
		}
		current = paths.Retrieved
	case StageClassify:
		current = paths.Retrieved
	case StageExtract:
		current = paths.Filtered
	default:
		return "", fmt.Errorf("pipeline: unknown start stage %q", startFrom)
	}

	if startFrom != StageExtract {
		fmt.Fprintln(progress, "step 2: classifying and filtering abstracts")
		if _, err := classify.Run(ctx, client, current, paths.Filtered, progress); err != nil {
			return "", err
		}
		current = paths.Filtered
	}

	fmt.Fprintln(progress, "step 3: extracting structured summaries")
	if _, err := extract.Run(ctx, client, current, paths.Extracted, progress); err != nil {
		return "", err
	}
	return paths.Extracted, nil
}

// Full runs the core stages and then the optional split and QA stages.
func Full(ctx context.Context, client chat.Client, cfg types.PipelineConfig, paths Paths, opts Options, progress io.Writer) error {
	current, err := Core(ctx, client, cfg, paths, opts.StartFrom, progress)
	if err != nil {
		return err
	}

	if opts.SkipSplit {
		fmt.Fprintln(progress, "skipping step 3b (split)")
	} else {
		fmt.Fprintln(progress, "step 3b: splitting structured fields")
		if _, err := splitter.Run(current, paths.Split, progress); err != nil {
			return err
		}
		current = paths.Split
	}

	if opts.SkipQA {
		fmt.Fprintln(progress, "skipping step 4 (question generation)")
		return nil
	}
	bank := paths.Bank
	if cfg.QA.BankPath != "" {
		bank = cfg.QA.BankPath
	}
	fmt.Fprintln(progress, "step 4: generating questions")
	if _, err := qa.Run(ctx, client, current, paths.QA, bank, progress); err != nil {
		return err
	}
	return nil
}
