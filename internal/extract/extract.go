// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract implements the third pipeline stage: asking the model for
// a structured chain-of-thought summary of each filtered abstract. The raw
// reply is stored verbatim in the gpt_output column; the splitter stage
// pulls individual fields out of it later.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/classify"
	"github.com/pdiddy/litmine/internal/retrieve"
	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

// OutputColumn holds the model's raw structured summary.
const OutputColumn = "gpt_output"

const (
	extractTemperature = 0.2
	extractMaxTokens   = 800
)

const systemPrompt = `You are an AI assistant that reads an abstract about depression or anxiety. Your goal is to extract key cause/effect relationships (risk factors), identify the population studied, and highlight any relevant interventions (treatments), and outcomes.`

var userPromptTmpl = template.Must(template.New("extract").Parse(`Specifically:
1. Summarize the main findings:
   - For depression/anxiety, what does the article claim are the causes, triggers, or risk factors?
   - Who is the population or demographic in focus (e.g. adolescents, older adults, postpartum, etc.)?
   - What interventions or treatments are mentioned, if any?
   - What outcomes or effects are measured?
2. Explain your reasoning step by step in a chain-of-thought style, so it's clear how you arrived at your summary.
3. If the abstract does not mention some parts (e.g., no specific population or intervention), just say so.

Here is the abstract:
"""{{.Abstract}}"""

Please provide a short structured summary, then provide your reasoning step by step as a chain of thought.`))

// requiredColumns is the stage-two header: the retrieve columns plus the
// classification label.
var requiredColumns = append(append([]string(nil), retrieve.Columns...), classify.ClassificationColumn)

// Summary reports what an extract run produced.
type Summary struct {
	Total  int
	Failed int
}

// Run sends the extraction prompt for every row of the stage-two CSV and
// writes the table with a gpt_output column appended. A failed chat call
// leaves that row's gpt_output empty and is logged; the run continues.
func Run(ctx context.Context, client chat.Client, inPath, outPath string, progress io.Writer) (*Summary, error) {
	table, err := tabular.Read(inPath)
	if err != nil {
		return nil, err
	}
	if err := table.Require(requiredColumns...); err != nil {
		return nil, fmt.Errorf("extract: %s: %w", inPath, err)
	}

	table.AddColumn(OutputColumn)
	summary := &Summary{}

	for i := 0; i < table.Len(); i++ {
		summary.Total++
		raw, err := extractRow(ctx, client, table.Get(i, "abstract"))
		if err != nil {
			summary.Failed++
			zap.S().Warnw("extraction prompt failed", "pmid", table.Get(i, "pmid"), "error", err)
			continue
		}
		table.Set(i, OutputColumn, raw)
	}

	if err := tabular.Write(outPath, table); err != nil {
		return nil, err
	}
	fmt.Fprintf(progress, "wrote %s (%d rows, %d failed)\n", outPath, summary.Total, summary.Failed)
	return summary, nil
}

// extractRow returns the model's raw reply for one abstract.
func extractRow(ctx context.Context, client chat.Client, abstract string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Abstract string }{Abstract: types.TruncateAbstract(abstract, types.MaxPromptAbstract)}
	if err := userPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	return client.Chat(ctx, []chat.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buf.String()},
	}, extractTemperature, extractMaxTokens)
}
