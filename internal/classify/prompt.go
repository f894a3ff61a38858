// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"text/template"
)

// systemPrompt frames the relevance decision. The model is asked for one of
// three labels; anything else triggers the fallback ladder in classify.go.
const systemPrompt = `You are an AI assistant that determines whether an abstract truly focuses on clinical depression/anxiety research. You should answer "YES", "NO", or "UNCERTAIN".`

// strictSystemPrompt is the re-prompt used when the first reply contains no
// recognizable label.
const strictSystemPrompt = `Return only YES, NO, or UNCERTAIN.`

// userPromptTmpl is the few-shot classification prompt sent per article.
var userPromptTmpl = template.Must(template.New("classify").Parse(`Instruction:
1. Read the provided abstract carefully.
2. Decide if it primarily discusses depression or anxiety in a medical or clinical sense.
3. If you are not certain or the abstract is borderline, answer "UNCERTAIN".
4. Otherwise, answer YES or NO strictly.

Examples:
Example 1
Abstract: "We investigate a novel antidepressant in patients with major depressive disorder..."
Gold Answer: YES

Example 2
Abstract: "We analyze ways to store carbon in soil to mitigate climate change..."
Gold Answer: NO

Example 3
Abstract: "Exploring the link between anxiety symptoms and cortisol levels in adolescents..."
Gold Answer: YES

Now classify this new article:
Abstract: "{{.Abstract}}"
PMID: {{.PMID}}
Title: {{.Title}}
Final answer (YES/NO/UNCERTAIN):`))

type promptData struct {
	PMID     string
	Title    string
	Abstract string
}

// renderPrompt executes the classification prompt template for one article.
func renderPrompt(pmid, title, abstract string) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, promptData{PMID: pmid, Title: title, Abstract: abstract}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
