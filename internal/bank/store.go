// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bank persists generated exam questions in a SQLite database with
// a full-text index, so question sets from many pipeline runs can be
// searched and exported as one collection.
package bank

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

const dbFile = "qa.db"

// Store manages the question bank SQLite database.
type Store struct {
	db         *sql.DB
	bankDir    string
	maxResults int
}

// NewStore opens or creates the question bank database at bankDir/qa.db,
// creating the schema if it does not exist.
func NewStore(cfg types.BankConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.BankDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bank directory: %w", err)
	}

	dbPath := filepath.Join(cfg.BankDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		bankDir:    cfg.BankDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT,
			qa_type TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT,
			explanation TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_questions_text ON questions(question)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_pmid ON questions(pmid)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='questions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE questions_fts USING fts5(question, answer, explanation, content=questions, content_rowid=rowid)`,
			`CREATE TRIGGER questions_ai AFTER INSERT ON questions BEGIN
				INSERT INTO questions_fts(rowid, question, answer, explanation)
				VALUES (new.rowid, new.question, new.answer, new.explanation);
			END`,
			`CREATE TRIGGER questions_ad AFTER DELETE ON questions BEGIN
				INSERT INTO questions_fts(questions_fts, rowid, question, answer, explanation)
				VALUES('delete', old.rowid, old.question, old.answer, old.explanation);
			END`,
			`CREATE TRIGGER questions_au AFTER UPDATE ON questions BEGIN
				INSERT INTO questions_fts(questions_fts, rowid, question, answer, explanation)
				VALUES('delete', old.rowid, old.question, old.answer, old.explanation);
				INSERT INTO questions_fts(rowid, question, answer, explanation)
				VALUES (new.rowid, new.question, new.answer, new.explanation);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a bank ingest run.
type IngestSummary struct {
	Added   int
	Skipped int
	Failed  int
}

// Total returns the number of rows processed.
func (s IngestSummary) Total() int {
	return s.Added + s.Skipped + s.Failed
}

// Ingest loads questions from a CSV into the bank. It accepts either the
// standalone bank CSV (qa_* columns only) or the full stage-four CSV, in
// which case each question keeps its source pmid. Re-ingesting the same
// file is idempotent: duplicate question text is skipped.
func (s *Store) Ingest(ctx context.Context, csvPath string, w io.Writer) (IngestSummary, error) {
	table, err := tabular.Read(csvPath)
	if err != nil {
		return IngestSummary{}, err
	}
	if err := table.Require("qa_type", "qa_question", "qa_answer", "qa_explanation"); err != nil {
		return IngestSummary{}, fmt.Errorf("bank: %s: %w", csvPath, err)
	}
	hasPMID := table.Col("pmid") >= 0

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO questions (pmid, qa_type, question, answer, explanation)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary IngestSummary
	for i := 0; i < table.Len(); i++ {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		question := table.Get(i, "qa_question")
		if question == "" {
			summary.Skipped++
			continue
		}

		pmid := ""
		if hasPMID {
			pmid = table.Get(i, "pmid")
		}

		res, err := stmt.ExecContext(ctx,
			pmid, table.Get(i, "qa_type"), question,
			table.Get(i, "qa_answer"), table.Get(i, "qa_explanation"),
		)
		if err != nil {
			fmt.Fprintf(w, "failed  row %d: %v\n", i, err)
			summary.Failed++
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			summary.Skipped++
			continue
		}
		summary.Added++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing ingest: %w", err)
	}

	fmt.Fprintf(w, "added: %d, skipped: %d, failed: %d\n",
		summary.Added, summary.Skipped, summary.Failed)
	return summary, nil
}
