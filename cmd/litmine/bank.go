// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/bank"
	"github.com/pdiddy/litmine/pkg/types"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the question bank (store, search, export)",
	Long: `Bank manages a SQLite question bank built from generated QA CSVs. Use
subcommands to ingest questions, search them with full text, or export.`,
}

// --- store subcommand ---

var bankStoreCmd = &cobra.Command{
	Use:   "store <csv>",
	Short: "Ingest a QA CSV into the question bank",
	Long: `Store loads questions from a bank CSV or a stage-four CSV into the SQLite
database with FTS5 indexing. Duplicate question text is skipped, so
re-ingesting a file is harmless.`,
	Args: cobra.ExactArgs(1),
	RunE: runBankStore,
}

func runBankStore(cmd *cobra.Command, args []string) error {
	store, err := openBank(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d question(s) failed to ingest", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var bankSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the question bank with full-text search",
	Long: `Search runs an FTS5 full-text query over question, answer, and explanation
text, optionally filtered by source PMID. Results are ranked by relevance.`,
	RunE: runBankSearch,
}

func runBankSearch(cmd *cobra.Command, args []string) error {
	store, err := openBank(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := bankQueryOpts(cmd, args)
	if opts.Query == "" && opts.PMID == "" {
		return fmt.Errorf("query or filter required: provide a search query or --pmid")
	}

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []bank.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-60s  %s\n", "Rank", "PMID", "Question", "Answer")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		question := r.Question
		if len(question) > 60 {
			question = question[:57] + "..."
		}
		answer := r.Answer
		if len(answer) > 20 {
			answer = answer[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-60s  %s\n", i+1, r.PMID, question, answer)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var bankExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the question bank to YAML or JSON",
	Long: `Export writes the full question bank (or a filtered subset) to
export.yaml or export.json in the bank directory. Supports the same filter
flags as search for partial exports.`,
	RunE: runBankExport,
}

func runBankExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openBank(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := bankQueryOpts(cmd, args)
	bankDir, _ := cmd.Flags().GetString("bank-dir")

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", bankDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", bankDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openBank(cmd *cobra.Command) (*bank.Store, error) {
	bankDir, _ := cmd.Flags().GetString("bank-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return bank.NewStore(types.BankConfig{
		BankDir:    bankDir,
		MaxResults: maxResults,
	})
}

func bankQueryOpts(cmd *cobra.Command, args []string) bank.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	pmid, _ := cmd.Flags().GetString("pmid")
	limit, _ := cmd.Flags().GetInt("limit")

	return bank.QueryOptions{
		Query:      queryText,
		PMID:       pmid,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	bankCmd.PersistentFlags().String("bank-dir", "bank", "directory for the question bank database")
	bankCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Search flags.
	bankSearchCmd.Flags().String("query", "", "full-text search query")
	bankSearchCmd.Flags().String("pmid", "", "filter by source PMID")
	bankSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	bankSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	bankExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	bankExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	bankExportCmd.Flags().String("pmid", "", "filter by source PMID for partial export")
	bankExportCmd.Flags().Int("limit", 0, "maximum questions to export (0 = all)")

	// Wire subcommands.
	bankCmd.AddCommand(bankStoreCmd)
	bankCmd.AddCommand(bankSearchCmd)
	bankCmd.AddCommand(bankExportCmd)

	rootCmd.AddCommand(bankCmd)
}
