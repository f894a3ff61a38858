// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litmine pipeline.
package types

// RelevanceLabel is the classifier's topical-fit verdict for one record.
type RelevanceLabel string

const (
	LabelYes       RelevanceLabel = "YES"
	LabelNo        RelevanceLabel = "NO"
	LabelUncertain RelevanceLabel = "UNCERTAIN"
)

// Valid reports whether the label is one of the three closed values.
func (l RelevanceLabel) Valid() bool {
	return l == LabelYes || l == LabelNo || l == LabelUncertain
}

// MaxPromptAbstract bounds the abstract length sent with any model prompt.
const MaxPromptAbstract = 6000

// TruncateAbstract caps an abstract at n bytes for prompt construction.
func TruncateAbstract(abstract string, n int) string {
	if n <= 0 || len(abstract) <= n {
		return abstract
	}
	return abstract[:n]
}

// Record is one literature item flowing through the pipeline. Fields
// accumulate as stages run: retrieval fills the bibliographic fields,
// classification fills the label, extraction fills RawOutput, and the
// splitter fills the four derived fields.
type Record struct {
	// PMID is the stable identifier from the literature database.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the full abstract text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Date is the publication date as "YYYY-Mon-DD" (partial dates allowed).
	Date string `json:"date" yaml:"date"`

	// Journal is the publication venue.
	Journal string `json:"journal" yaml:"journal"`

	// PublicationType is a semicolon-joined list of publication kinds.
	PublicationType string `json:"publication_type" yaml:"publication_type"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// Classification is the relevance label, empty before classification.
	Classification RelevanceLabel `json:"classification,omitempty" yaml:"classification,omitempty"`

	// RawOutput is the schema extractor's verbatim model reply.
	RawOutput string `json:"gpt_output,omitempty" yaml:"gpt_output,omitempty"`

	// Derived fields produced by the splitter, each possibly empty.
	Population  string `json:"population,omitempty" yaml:"population,omitempty"`
	RiskFactors string `json:"risk_factors,omitempty" yaml:"risk_factors,omitempty"`
	Treatments  string `json:"treatments,omitempty" yaml:"treatments,omitempty"`
	Outcomes    string `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// QAItem is one generated question/answer/explanation triple. The bank
// stores these without source identifiers.
type QAItem struct {
	// Type is the question format; "sa" (short answer) is the only value
	// the generator currently produces.
	Type string `json:"qa_type" yaml:"qa_type"`

	// Question is a stand-alone short-answer question.
	Question string `json:"qa_question" yaml:"qa_question"`

	// Answer is the key answer grounded in the source abstract.
	Answer string `json:"qa_answer" yaml:"qa_answer"`

	// Explanation justifies the answer.
	Explanation string `json:"qa_explanation" yaml:"qa_explanation"`
}
