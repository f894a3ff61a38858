// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify implements the second pipeline stage: labeling each
// retrieved abstract as relevant (YES), irrelevant (NO), or UNCERTAIN, and
// keeping only the YES rows.
//
// Labeling is a three-tier ladder. The few-shot prompt runs first; if its
// reply contains no recognizable label, a strict re-prompt runs at
// temperature zero; if that also fails, a keyword heuristic decides. Every
// row therefore ends with one of the three labels.
package classify

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/retrieve"
	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

// ClassificationColumn is added to the stage-two output.
const ClassificationColumn = "classification"

// Sampling parameters for the two prompt tiers.
const (
	mainTemperature   = 0.1
	mainMaxTokens     = 160
	strictTemperature = 0
	strictMaxTokens   = 80
	strictAbstractCap = 2000
)

// topicKeywords is the last-resort heuristic: stems that mark an abstract
// as on-topic when the model gives no usable label.
var topicKeywords = regexp.MustCompile(`(?i)\b(depress|anxiet|mdd|gad|panic|phobia)\b`)

// Summary reports the label breakdown of a classify run.
type Summary struct {
	Total  int
	Kept   int
	Counts map[types.RelevanceLabel]int
}

// Run classifies every row of the stage-one CSV and writes the rows labeled
// YES, with a classification column appended, to outPath.
func Run(ctx context.Context, client chat.Client, inPath, outPath string, progress io.Writer) (*Summary, error) {
	in, err := tabular.Read(inPath)
	if err != nil {
		return nil, err
	}
	if err := in.Require(retrieve.Columns...); err != nil {
		return nil, fmt.Errorf("classify: %s: %w", inPath, err)
	}

	out := tabular.New(append(append([]string(nil), in.Header...), ClassificationColumn))
	summary := &Summary{Counts: make(map[types.RelevanceLabel]int)}

	for i := 0; i < in.Len(); i++ {
		label := classifyRow(ctx, client,
			in.Get(i, "pmid"),
			in.Get(i, "title"),
			in.Get(i, "abstract"),
		)
		summary.Total++
		summary.Counts[label]++
		if label != types.LabelYes {
			continue
		}
		summary.Kept++
		out.Append(append(append([]string(nil), in.Rows[i]...), string(label)))
	}

	if err := tabular.Write(outPath, out); err != nil {
		return nil, err
	}
	fmt.Fprintf(progress, "wrote %s (kept %d of %d)\n", outPath, summary.Kept, summary.Total)
	fmt.Fprintf(progress, "classify breakdown: YES=%d NO=%d UNCERTAIN=%d\n",
		summary.Counts[types.LabelYes], summary.Counts[types.LabelNo], summary.Counts[types.LabelUncertain])
	return summary, nil
}

// classifyRow runs the three-tier ladder for one article and always returns
// a valid label.
func classifyRow(ctx context.Context, client chat.Client, pmid, title, abstract string) types.RelevanceLabel {
	abstract = types.TruncateAbstract(abstract, types.MaxPromptAbstract)

	// Tier 1: few-shot prompt.
	var label types.RelevanceLabel
	user, err := renderPrompt(pmid, title, abstract)
	if err == nil {
		resp, chatErr := client.Chat(ctx, []chat.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		}, mainTemperature, mainMaxTokens)
		if chatErr != nil {
			zap.S().Warnw("classification prompt failed", "pmid", pmid, "error", chatErr)
		} else {
			label = coerceLabel(resp)
		}
	}

	// Tier 2: strict re-prompt with a shortened abstract.
	if !label.Valid() {
		resp, chatErr := client.Chat(ctx, []chat.Message{
			{Role: "system", Content: strictSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\nAbstract: %s", title, types.TruncateAbstract(abstract, strictAbstractCap))},
		}, strictTemperature, strictMaxTokens)
		if chatErr != nil {
			zap.S().Warnw("strict classification re-prompt failed", "pmid", pmid, "error", chatErr)
		} else {
			label = coerceLabel(resp)
		}
	}

	// Tier 3: keyword heuristic, so no row is left unlabeled.
	if !label.Valid() {
		if topicKeywords.MatchString(strings.ToLower(title + " " + abstract)) {
			label = types.LabelYes
		} else {
			label = types.LabelNo
		}
	}
	return label
}

// coerceLabel extracts a label from a possibly chatty reply. YES is checked
// before NO so a reply mentioning both resolves to YES.
func coerceLabel(resp string) types.RelevanceLabel {
	upper := strings.ToUpper(strings.TrimSpace(resp))
	switch {
	case strings.Contains(upper, "YES"):
		return types.LabelYes
	case strings.Contains(upper, "NO"):
		return types.LabelNo
	case strings.Contains(upper, "UNCERTAIN"):
		return types.LabelUncertain
	}
	return ""
}
