// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bank

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for question bank queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// PMID filters by source article.
	PMID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one stored question with its source article, when known.
type Entry struct {
	PMID        string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Type        string `json:"qa_type" yaml:"qa_type"`
	Question    string `json:"qa_question" yaml:"qa_question"`
	Answer      string `json:"qa_answer" yaml:"qa_answer"`
	Explanation string `json:"qa_explanation" yaml:"qa_explanation"`
}

// Search queries the bank with optional full-text search. Full-text queries
// are ranked by relevance; filter-only queries come back in insertion order.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT q.pmid, q.qa_type, q.question, q.answer, q.explanation
			FROM questions_fts
			JOIN questions q ON q.rowid = questions_fts.rowid
			WHERE questions_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT q.pmid, q.qa_type, q.question, q.answer, q.explanation
			FROM questions q
			WHERE 1=1`)
	}

	if opts.PMID != "" {
		qb.WriteString(` AND q.pmid = ?`)
		args = append(args, opts.PMID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY questions_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY q.rowid`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying question bank: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PMID, &e.Type, &e.Question, &e.Answer, &e.Explanation); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, e)
	}

	return results, rows.Err()
}
