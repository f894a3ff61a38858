// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/tabular"
)

// scriptedClient returns canned replies in call order.
type scriptedClient struct {
	replies []string
	calls   int

	temperatures []float64
}

func (c *scriptedClient) Chat(_ context.Context, _ []chat.Message, temperature float64, _ int64) (string, error) {
	c.temperatures = append(c.temperatures, temperature)
	if c.calls >= len(c.replies) {
		return "", nil
	}
	r := c.replies[c.calls]
	c.calls++
	return r, nil
}

func writeFiltered(t *testing.T, dir string, rows ...[]string) string {
	t.Helper()
	tbl := tabular.New(requiredColumns)
	for _, r := range rows {
		tbl.Append(r)
	}
	path := filepath.Join(dir, "step2_filtered.csv")
	if err := tabular.Write(path, tbl); err != nil {
		t.Fatal(err)
	}
	return path
}

const goodReply = `Here is your question:
{"type": "sa", "question": "Which drug class improves remission?", "answer": "SSRIs", "explanation": "The trial showed SSRI benefit."}`

func TestRunGeneratesAndBanks(t *testing.T) {
	dir := t.TempDir()
	in := writeFiltered(t, dir,
		[]string{"1", "T", "Abstract text.", "2020", "J", "Journal Article", "2020", "YES"},
	)
	out := filepath.Join(dir, "step4_qa.csv")
	bankPath := filepath.Join(dir, "qa_bank.csv")

	client := &scriptedClient{replies: []string{goodReply}}
	summary, err := Run(context.Background(), client, in, out, bankPath, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 1 || summary.Banked != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	tbl, err := tabular.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if v := tbl.Get(0, "qa_question"); v != "Which drug class improves remission?" {
		t.Errorf("qa_question = %q", v)
	}
	if v := tbl.Get(0, "qa_type"); v != "sa" {
		t.Errorf("qa_type = %q", v)
	}

	bank, err := tabular.Read(bankPath)
	if err != nil {
		t.Fatal(err)
	}
	if bank.Len() != 1 {
		t.Fatalf("bank rows = %d", bank.Len())
	}
	if v := bank.Get(0, "qa_answer"); v != "SSRIs" {
		t.Errorf("bank qa_answer = %q", v)
	}
	// The bank carries no article identifiers.
	if bank.Col("pmid") != -1 {
		t.Error("bank should not contain a pmid column")
	}
}

func TestRunStrictRetryOnUnparseableReply(t *testing.T) {
	dir := t.TempDir()
	in := writeFiltered(t, dir,
		[]string{"1", "T", "A", "2020", "J", "Journal Article", "2020", "YES"},
	)

	client := &scriptedClient{replies: []string{
		"I'd be happy to help! What kind of question would you like?",
		`{"type": "sa", "question": "Q?", "answer": "A", "explanation": "E"}`,
	}}
	summary, err := Run(context.Background(), client, in,
		filepath.Join(dir, "out.csv"), filepath.Join(dir, "bank.csv"), io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Banked != 1 {
		t.Fatalf("Banked = %d", summary.Banked)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
	if client.temperatures[1] != 0 {
		t.Errorf("retry temperature = %v", client.temperatures[1])
	}
}

func TestRunLeavesFailedRowsEmpty(t *testing.T) {
	dir := t.TempDir()
	in := writeFiltered(t, dir,
		[]string{"1", "T", "A", "2020", "J", "Journal Article", "2020", "YES"},
	)
	out := filepath.Join(dir, "out.csv")
	bankPath := filepath.Join(dir, "bank.csv")

	// Both attempts return prose with no JSON.
	client := &scriptedClient{replies: []string{"no json here", "still no json"}}
	summary, err := Run(context.Background(), client, in, out, bankPath, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Banked != 0 {
		t.Fatalf("Banked = %d", summary.Banked)
	}

	tbl, err := tabular.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if v := tbl.Get(0, "qa_question"); v != "" {
		t.Errorf("qa_question = %q, want empty", v)
	}
	// qa_type stays "sa" even for failed rows.
	if v := tbl.Get(0, "qa_type"); v != "sa" {
		t.Errorf("qa_type = %q", v)
	}

	bank, err := tabular.Read(bankPath)
	if err != nil {
		t.Fatal(err)
	}
	if bank.Len() != 0 {
		t.Errorf("bank rows = %d, want 0", bank.Len())
	}
}

func TestRunAppendsToExistingBank(t *testing.T) {
	dir := t.TempDir()
	bankPath := filepath.Join(dir, "qa_bank.csv")

	existing := tabular.New(BankColumns)
	existing.Append([]string{"sa", "Old question?", "Old answer", "Old explanation"})
	if err := tabular.Write(bankPath, existing); err != nil {
		t.Fatal(err)
	}

	in := writeFiltered(t, dir,
		[]string{"1", "T", "A", "2020", "J", "Journal Article", "2020", "YES"},
	)

	client := &scriptedClient{replies: []string{goodReply}}
	if _, err := Run(context.Background(), client, in, filepath.Join(dir, "out.csv"), bankPath, io.Discard); err != nil {
		t.Fatalf("Run: %v", err)
	}

	bank, err := tabular.Read(bankPath)
	if err != nil {
		t.Fatal(err)
	}
	if bank.Len() != 2 {
		t.Fatalf("bank rows = %d, want 2", bank.Len())
	}
	if v := bank.Get(0, "qa_question"); v != "Old question?" {
		t.Errorf("existing row lost: %q", v)
	}
	if !strings.Contains(bank.Get(1, "qa_question"), "remission") {
		t.Errorf("new row = %q", bank.Get(1, "qa_question"))
	}
}
