// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/retrieve"
	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

// echoClient keys on the system prompt to play all three model roles, so
// every stage has something to chew on.
type echoClient struct{}

func (echoClient) Chat(_ context.Context, msgs []chat.Message, _ float64, _ int64) (string, error) {
	sys := ""
	if len(msgs) > 0 && msgs[0].Role == "system" {
		sys = msgs[0].Content
	}
	switch {
	case strings.Contains(sys, "determines whether"):
		return "YES", nil
	case strings.Contains(sys, "reads an abstract"):
		return "**Population:** adults with MDD\n**Outcomes:** remission rates improved", nil
	case strings.Contains(sys, "psychiatrist"):
		return `{"type": "sa", "question": "Which outcome improved?", "answer": "Remission", "explanation": "Stated directly."}`, nil
	}
	return "UNCERTAIN", nil
}

func writeRetrieved(t *testing.T, path string) {
	t.Helper()
	tbl := tabular.New(retrieve.Columns)
	tbl.Append([]string{"1", "MDD trial", "Adults with MDD improved on SSRIs.", "2020", "J", "Journal Article", "2020"})
	if err := tabular.Write(path, tbl); err != nil {
		t.Fatal(err)
	}
}

func TestCoreFromClassify(t *testing.T) {
	paths := DefaultPaths(t.TempDir())
	writeRetrieved(t, paths.Retrieved)

	last, err := Core(context.Background(), echoClient{}, types.PipelineConfig{}, paths, StageClassify, io.Discard)
	if err != nil {
		t.Fatalf("Core: %v", err)
	}
	if last != paths.Extracted {
		t.Errorf("last = %q", last)
	}

	tbl, err := tabular.Read(paths.Extracted)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	if tbl.Col("gpt_output") < 0 {
		t.Error("missing gpt_output column")
	}
}

func TestCoreUnknownStage(t *testing.T) {
	paths := DefaultPaths(t.TempDir())
	if _, err := Core(context.Background(), echoClient{}, types.PipelineConfig{}, paths, "acquire", io.Discard); err == nil {
		t.Fatal("want error for unknown stage")
	}
}

func TestFullFromClassifyProducesAllOutputs(t *testing.T) {
	paths := DefaultPaths(t.TempDir())
	writeRetrieved(t, paths.Retrieved)

	opts := Options{StartFrom: StageClassify}
	if err := Full(context.Background(), echoClient{}, types.PipelineConfig{}, paths, opts, io.Discard); err != nil {
		t.Fatalf("Full: %v", err)
	}

	for _, p := range []string{paths.Filtered, paths.Extracted, paths.Split, paths.QA, paths.Bank} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %s: %v", filepath.Base(p), err)
		}
	}

	split, err := tabular.Read(paths.Split)
	if err != nil {
		t.Fatal(err)
	}
	if v := split.Get(0, "population"); v != "adults with MDD" {
		t.Errorf("population = %q", v)
	}

	bank, err := tabular.Read(paths.Bank)
	if err != nil {
		t.Fatal(err)
	}
	if bank.Len() != 1 {
		t.Errorf("bank rows = %d", bank.Len())
	}
}

func TestFullSkipsOptionalStages(t *testing.T) {
	paths := DefaultPaths(t.TempDir())
	writeRetrieved(t, paths.Retrieved)

	opts := Options{StartFrom: StageClassify, SkipSplit: true, SkipQA: true}
	if err := Full(context.Background(), echoClient{}, types.PipelineConfig{}, paths, opts, io.Discard); err != nil {
		t.Fatalf("Full: %v", err)
	}

	if _, err := os.Stat(paths.Split); !os.IsNotExist(err) {
		t.Error("split output should not exist")
	}
	if _, err := os.Stat(paths.QA); !os.IsNotExist(err) {
		t.Error("qa output should not exist")
	}
}
