// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package splitter decomposes the schema extractor's free-text model output
// into discrete clinical attributes. The upstream prompt is
// instruction-following rather than a strict data contract, so the source
// text has no enforced schema; extraction is a best-effort heuristic over
// the phrasing patterns the model habitually produces (bolded labels,
// colon-separated headings, question echoes). A field the model phrased some
// other way degrades silently to empty — there is no way to distinguish
// "absent in source" from "present but unrecognized".
package splitter

import (
	"regexp"
	"strings"
)

// FieldNames lists the derived attributes in extraction order.
var FieldNames = []string{"population", "risk_factors", "treatments", "outcomes"}

// minContentLen rejects spurious near-zero-content captures (e.g. a pattern
// matching only punctuation). A capture must exceed this after trimming.
const minContentLen = 5

// fieldEntry binds one attribute to its ordered candidate patterns. Patterns
// are tried top to bottom; the first one that matches with enough captured
// content wins. Each anchors on a heading-like phrase (optionally inside
// ** emphasis markers) and captures up to the next heading, a numbered list
// marker, a question echo, or end of text.
type fieldEntry struct {
	name     string
	patterns []*regexp.Regexp
}

var fieldTable = []fieldEntry{
	{
		name: "population",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)\*\*(?:population|participants?|subjects?|cohorts?|demographics?)[^*]*\*\*:?\s*-?\s*(.+?)(?:\n\*\*|\n\d+\.|For|What|$)`),
			regexp.MustCompile(`(?is)(?:population|participants?|subjects?|cohorts?|demographics?)[^:\n]*:\s*-?\s*(.+?)(?:\n|$)`),
			regexp.MustCompile(`(?is)(?:population|participants?|subjects?|cohorts?|demographics?).{0,40}?(?:in focus|focus|studied|examined):?\s*-?\s*(.+?)(?:\n\*\*|\n\d+\.|For|What|$)`),
			regexp.MustCompile(`(?is)(?:who is the|population or demographic in focus).*?:?\s*-?\s*(.+?)(?:\n|\*\*|For|What|$)`),
		},
	},
	{
		name: "risk_factors",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)\*\*(?:risk factors?|causes?|triggers?|predictors?)[^*]*\*\*:?\s*-?\s*(.+?)(?:\n\*\*|\n\d+\.|Who|What|$)`),
			regexp.MustCompile(`(?is)(?:risk factors?|causes?|triggers?|predictors?)[^:\n]*:\s*-?\s*(.+?)(?:\n|$)`),
			regexp.MustCompile(`(?is)(?:what does the article claim are the|causes, triggers, or risk factors).*?:?\s*-?\s*(.+?)(?:\n|\*\*|Who|What|$)`),
		},
	},
	{
		name: "treatments",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)\*\*(?:treatments?|interventions?|therap(?:y|ies)|management|approach(?:es)?)[^*]*\*\*:?\s*-?\s*(.+?)(?:\n\*\*|\n\d+\.|What|$)`),
			regexp.MustCompile(`(?is)(?:treatments?|interventions?|therap(?:y|ies)|management|approach(?:es)?)[^:\n]*:\s*-?\s*(.+?)(?:\n|$)`),
			regexp.MustCompile(`(?is)(?:what interventions or treatments).*?:?\s*-?\s*(.+?)(?:\n|\*\*|What|$)`),
		},
	},
	{
		name: "outcomes",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)\*\*(?:outcomes?|results?|effects?|findings?)[^*]*\*\*:?\s*-?\s*(.+?)(?:\n\*\*|\n\d+\.|Explain|$)`),
			regexp.MustCompile(`(?is)(?:outcomes?|results?|effects?|findings?|measured)[^:\n]*:\s*-?\s*(.+?)(?:\n|$)`),
			regexp.MustCompile(`(?is)(?:what outcomes or effects are measured).*?:?\s*-?\s*(.+?)(?:\n|\*\*|Explain|$)`),
		},
	},
}

// Split extracts all four attributes from one model output. The result
// always carries exactly the keys in FieldNames; an attribute with no
// sufficiently long pattern match is the empty string, which is not an
// error, just "not present in this response".
func Split(text string) map[string]string {
	out := make(map[string]string, len(fieldTable))
	for _, entry := range fieldTable {
		out[entry.name] = extract(text, entry.patterns)
	}
	return out
}

// ExtractField extracts a single named attribute. Unknown field names
// yield the empty string.
func ExtractField(text, field string) string {
	for _, entry := range fieldTable {
		if entry.name == field {
			return extract(text, entry.patterns)
		}
	}
	return ""
}

// extract tries each candidate pattern in order until one matches and
// yields captured text of non-trivial length.
func extract(text string, patterns []*regexp.Regexp) string {
	if text == "" {
		return ""
	}
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cleaned := cleanCapture(m[1])
		if len(cleaned) > minContentLen {
			return cleaned
		}
	}
	return ""
}

var (
	newlineRuns = regexp.MustCompile(`\n+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// cleanCapture normalizes a raw capture: newline runs become single spaces,
// whitespace runs collapse, and leading/trailing dashes, emphasis markers,
// and whitespace are trimmed.
func cleanCapture(s string) string {
	s = newlineRuns.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.Trim(s, "-* \t")
}
