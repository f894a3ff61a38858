// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa implements the fourth pipeline stage: generating one
// exam-style short-answer question per filtered abstract and accumulating
// the usable ones into a question bank CSV.
package qa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/classify"
	"github.com/pdiddy/litmine/internal/llmjson"
	"github.com/pdiddy/litmine/internal/retrieve"
	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

// Columns appended by the QA stage.
var Columns = []string{"qa_type", "qa_question", "qa_answer", "qa_explanation"}

// BankColumns is the header of the standalone question bank CSV. It carries
// no article identifiers so the bank can circulate on its own.
var BankColumns = Columns

// wantedKeys are the schema fields searched for in the model's JSON reply.
var wantedKeys = []string{"type", "question", "answer", "explanation"}

const (
	mainTemperature   = 0.5
	mainMaxTokens     = 800
	strictTemperature = 0
	strictMaxTokens   = 400
	strictAbstractCap = 2000
)

const systemPrompt = `You are a board-certified psychiatrist who writes exam questions.`

const strictSystemPrompt = `Return ONLY JSON with keys type,question,answer,explanation.`

var userPromptTmpl = template.Must(template.New("qa").Parse(`ABSTRACT
--------
{{.Abstract}}

TASK
----
Create **one** stand-alone short-answer question a licensed psychiatrist
should be able to answer **without seeing the abstract**, yet whose
correct answer is fully grounded in the abstract's content.

Constraints
• Topic must involve clinical depression disorders or clinical anxiety disorders.
• Difficulty level ≥ "hard" (non-trivial clinical reasoning).
• Do **not** refer to "this passage", "the abstract", authors, journal,
  year, tables, or figures.
• The question must be solvable solely from this abstract.

Output JSON **exactly** in this schema:
{
  "type": "sa",
  "question": "...?",
  "answer": "≤50-word key answer",
  "explanation": "≤50-word justification grounded in the abstract"
}`))

var requiredColumns = append(append([]string(nil), retrieve.Columns...), classify.ClassificationColumn)

// Summary reports what a QA run produced.
type Summary struct {
	Total  int
	Banked int
}

// Run generates a question per row of the filtered CSV, writes the table
// with the qa_* columns appended to outPath, and appends the usable
// questions to the bank CSV at bankPath. Rows whose replies yield no
// parseable question keep empty qa_* values.
func Run(ctx context.Context, client chat.Client, inPath, outPath, bankPath string, progress io.Writer) (*Summary, error) {
	table, err := tabular.Read(inPath)
	if err != nil {
		return nil, err
	}
	if err := table.Require(requiredColumns...); err != nil {
		return nil, fmt.Errorf("qa: %s: %w", inPath, err)
	}

	for _, name := range Columns {
		table.AddColumn(name)
	}

	bank, err := loadBank(bankPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i := 0; i < table.Len(); i++ {
		summary.Total++
		table.Set(i, "qa_type", "sa")

		item := generateRow(ctx, client, table.Get(i, "pmid"), table.Get(i, "abstract"))
		table.Set(i, "qa_question", item.Question)
		table.Set(i, "qa_answer", item.Answer)
		table.Set(i, "qa_explanation", item.Explanation)

		if item.Question != "" {
			bank.Append([]string{"sa", item.Question, item.Answer, item.Explanation})
			summary.Banked++
		}
	}

	if err := tabular.Write(outPath, table); err != nil {
		return nil, err
	}
	if err := tabular.Write(bankPath, bank); err != nil {
		return nil, err
	}
	fmt.Fprintf(progress, "wrote %s (%d rows, %d banked)\n", outPath, summary.Total, summary.Banked)
	return summary, nil
}

// loadBank opens an existing bank CSV so new questions accumulate across
// runs, or starts a fresh one.
func loadBank(path string) (*tabular.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return tabular.New(BankColumns), nil
	}
	bank, err := tabular.Read(path)
	if err != nil {
		return nil, err
	}
	if err := bank.Require(BankColumns...); err != nil {
		return nil, fmt.Errorf("qa: bank %s: %w", path, err)
	}
	return bank, nil
}

// generateRow runs the two-attempt prompt ladder for one abstract. A row
// that defeats both attempts comes back empty.
func generateRow(ctx context.Context, client chat.Client, pmid, abstract string) types.QAItem {
	abstract = types.TruncateAbstract(abstract, types.MaxPromptAbstract)

	var parsed map[string]any

	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, struct{ Abstract string }{Abstract: abstract}); err == nil {
		resp, chatErr := client.Chat(ctx, []chat.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buf.String()},
		}, mainTemperature, mainMaxTokens)
		if chatErr != nil {
			zap.S().Warnw("question prompt failed", "pmid", pmid, "error", chatErr)
		} else {
			parsed = llmjson.Parse(resp, wantedKeys...)
		}
	}

	if len(parsed) == 0 {
		resp, chatErr := client.Chat(ctx, []chat.Message{
			{Role: "system", Content: strictSystemPrompt},
			{Role: "user", Content: "Abstract: " + types.TruncateAbstract(abstract, strictAbstractCap)},
		}, strictTemperature, strictMaxTokens)
		if chatErr != nil {
			zap.S().Warnw("strict question re-prompt failed", "pmid", pmid, "error", chatErr)
		} else {
			parsed = llmjson.Parse(resp, wantedKeys...)
		}
	}

	return types.QAItem{
		Type:        "sa",
		Question:    stringValue(parsed, "question"),
		Answer:      stringValue(parsed, "answer"),
		Explanation: stringValue(parsed, "explanation"),
	}
}

func stringValue(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
