// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/retrieve"
	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

// scriptedClient replies with canned responses in order, or errors.
type scriptedClient struct {
	replies []string
	errs    []error
	calls   int

	lastMessages []chat.Message
	temperatures []float64
}

func (c *scriptedClient) Chat(_ context.Context, msgs []chat.Message, temperature float64, _ int64) (string, error) {
	i := c.calls
	c.calls++
	c.lastMessages = msgs
	c.temperatures = append(c.temperatures, temperature)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func TestCoerceLabel(t *testing.T) {
	tests := []struct {
		resp string
		want types.RelevanceLabel
	}{
		{"YES", types.LabelYes},
		{"  yes, this is relevant", types.LabelYes},
		{"Final answer: NO", types.LabelNo},
		{"UNCERTAIN", types.LabelUncertain},
		{"The answer is YES although NO is arguable", types.LabelYes},
		{"I cannot decide", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := coerceLabel(tt.resp); got != tt.want {
			t.Errorf("coerceLabel(%q) = %q, want %q", tt.resp, got, tt.want)
		}
	}
}

func TestClassifyRowFirstTier(t *testing.T) {
	client := &scriptedClient{replies: []string{"YES"}}
	label := classifyRow(context.Background(), client, "1", "Depression study", "An MDD trial.")
	if label != types.LabelYes {
		t.Fatalf("label = %q", label)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
	if len(client.lastMessages) != 2 || client.lastMessages[0].Role != "system" {
		t.Errorf("messages = %+v", client.lastMessages)
	}
	if !strings.Contains(client.lastMessages[1].Content, "PMID: 1") {
		t.Errorf("user prompt missing PMID: %s", client.lastMessages[1].Content)
	}
}

func TestClassifyRowStrictRetry(t *testing.T) {
	client := &scriptedClient{replies: []string{"I am not sure what you mean.", "UNCERTAIN"}}
	label := classifyRow(context.Background(), client, "1", "T", "A")
	if label != types.LabelUncertain {
		t.Fatalf("label = %q", label)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
	// Retry runs at temperature zero.
	if client.temperatures[1] != 0 {
		t.Errorf("retry temperature = %v", client.temperatures[1])
	}
}

func TestClassifyRowKeywordFallback(t *testing.T) {
	// Both prompts fail; the keyword heuristic decides.
	failing := []error{errors.New("api down"), errors.New("api down")}

	client := &scriptedClient{errs: failing}
	label := classifyRow(context.Background(), client, "1", "Panic disorder cohort", "We study GAD.")
	if label != types.LabelYes {
		t.Errorf("on-topic fallback label = %q, want YES", label)
	}

	client = &scriptedClient{errs: failing}
	label = classifyRow(context.Background(), client, "2", "Soil carbon storage", "Climate mitigation methods.")
	if label != types.LabelNo {
		t.Errorf("off-topic fallback label = %q, want NO", label)
	}
}

func TestClassifyRowAlwaysReturnsValidLabel(t *testing.T) {
	clients := []*scriptedClient{
		{replies: []string{"YES"}},
		{replies: []string{"mumble", "no"}},
		{replies: []string{"mumble", "mumble"}},
		{errs: []error{errors.New("x"), errors.New("x")}},
	}
	for i, c := range clients {
		label := classifyRow(context.Background(), c, "1", "t", "a")
		if !label.Valid() {
			t.Errorf("client %d: label %q not valid", i, label)
		}
	}
}

func TestRunKeepsOnlyYes(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "step1.csv")
	outPath := filepath.Join(dir, "step2.csv")

	in := tabular.New(retrieve.Columns)
	in.Append([]string{"1", "MDD trial", "abstract one", "2020", "J1", "Journal Article", "2020"})
	in.Append([]string{"2", "Soil carbon", "abstract two", "2020", "J2", "Journal Article", "2020"})
	in.Append([]string{"3", "Borderline", "abstract three", "2021", "J3", "Review", "2021"})
	if err := tabular.Write(inPath, in); err != nil {
		t.Fatal(err)
	}

	client := &scriptedClient{replies: []string{"YES", "NO", "UNCERTAIN"}}
	summary, err := Run(context.Background(), client, inPath, outPath, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Total != 3 || summary.Kept != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Counts[types.LabelNo] != 1 || summary.Counts[types.LabelUncertain] != 1 {
		t.Errorf("counts = %v", summary.Counts)
	}

	out, err := tabular.Read(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("output rows = %d, want 1", out.Len())
	}
	if v := out.Get(0, "pmid"); v != "1" {
		t.Errorf("kept pmid = %q", v)
	}
	if v := out.Get(0, ClassificationColumn); v != "YES" {
		t.Errorf("classification = %q", v)
	}
}

func TestRunMissingColumnFails(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "bad.csv")

	in := tabular.New([]string{"pmid", "title"})
	in.Append([]string{"1", "t"})
	if err := tabular.Write(inPath, in); err != nil {
		t.Fatal(err)
	}

	client := &scriptedClient{replies: []string{"YES"}}
	if _, err := Run(context.Background(), client, inPath, filepath.Join(dir, "out.csv"), io.Discard); err == nil {
		t.Fatal("want error for missing columns")
	}
}
