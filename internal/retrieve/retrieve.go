// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve implements the first pipeline stage: sampling PubMed
// abstracts per publication year and writing them to the stage-one CSV.
package retrieve

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litmine/internal/httputil"
	"github.com/pdiddy/litmine/internal/tabular"
	"github.com/pdiddy/litmine/pkg/types"
)

// Columns is the exact output header of the retrieve stage. Downstream
// stages validate their inputs against these names.
var Columns = []string{"pmid", "title", "abstract", "date", "journal", "publication_type", "year"}

const defaultFetchBatch = 200

// sample is substituted in tests to make per-year sampling deterministic.
var sample = func(ids []string, n int) []string {
	picked := append([]string(nil), ids...)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	picked = picked[:n]
	sort.Strings(picked)
	return picked
}

// Summary reports what a retrieve run produced.
type Summary struct {
	Total   int
	PerYear map[int]int
}

// Run queries PubMed year by year, samples PMIDs, fetches article details
// in batches, and writes the stage-one CSV to outPath. Progress lines go to
// progress. A run summary YAML is written next to the CSV.
func Run(ctx context.Context, cfg types.RetrieveConfig, outPath string, progress io.Writer) (*Summary, error) {
	if cfg.Keywords == "" {
		return nil, fmt.Errorf("retrieve: no keywords configured")
	}
	if cfg.StartYear <= 0 || cfg.EndYear < cfg.StartYear {
		return nil, fmt.Errorf("retrieve: invalid year range %d..%d", cfg.StartYear, cfg.EndYear)
	}

	batchSize := cfg.FetchBatchSize
	if batchSize <= 0 {
		batchSize = defaultFetchBatch
	}

	client := &entrezClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		pacer:     httputil.NewPacer(cfg.CallInterval),
		email:     cfg.Email,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
	}

	table := tabular.New(Columns)
	summary := &Summary{PerYear: make(map[int]int)}

	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		term := fmt.Sprintf(`(%s) AND ("%d/01/01"[PDAT] : "%d/12/31"[PDAT])`, cfg.Keywords, year, year)

		pmids, err := client.esearch(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("retrieve: year %d search: %w", year, err)
		}
		if len(pmids) == 0 {
			fmt.Fprintf(progress, "year %d: no results\n", year)
			continue
		}
		if cfg.SamplePerYear > 0 && len(pmids) > cfg.SamplePerYear {
			pmids = sample(pmids, cfg.SamplePerYear)
		}

		fmt.Fprintf(progress, "year %d: fetching %d articles\n", year, len(pmids))
		for i := 0; i < len(pmids); i += batchSize {
			end := i + batchSize
			if end > len(pmids) {
				end = len(pmids)
			}
			articles, err := client.efetch(ctx, pmids[i:end])
			if err != nil {
				return nil, fmt.Errorf("retrieve: year %d fetch: %w", year, err)
			}
			for _, art := range articles {
				rec := articleRecord(art, year)
				table.Append([]string{
					rec.PMID, rec.Title, rec.Abstract, rec.Date,
					rec.Journal, rec.PublicationType, strconv.Itoa(rec.Year),
				})
				summary.PerYear[year]++
				summary.Total++
			}
		}
	}

	if err := tabular.Write(outPath, table); err != nil {
		return nil, err
	}
	if err := writeRunFile(runFilePath(outPath), cfg, summary); err != nil {
		zap.S().Warnw("could not write run summary", "error", err)
	}
	fmt.Fprintf(progress, "wrote %d rows to %s\n", summary.Total, outPath)
	return summary, nil
}

// articleRecord maps a fetched article onto the pipeline record shape.
func articleRecord(art pubmedArticle, fallbackYear int) types.Record {
	d := art.Citation.Article

	pubType := strings.Trim(strings.Join(d.PublicationTypes, ";"), ";")
	if pubType == "" {
		pubType = "Journal Article"
	}

	year := fallbackYear
	if y, err := strconv.Atoi(d.Journal.PubDate.Year); err == nil {
		year = y
	}

	return types.Record{
		PMID:            art.Citation.PMID,
		Title:           d.Title,
		Abstract:        strings.Join(d.AbstractText, " "),
		Date:            formatDate(d.Journal.PubDate, fallbackYear),
		Journal:         d.Journal.Title,
		PublicationType: pubType,
		Year:            year,
	}
}

// formatDate joins the available PubDate parts with dashes, falling back to
// the query year when the record carries no year of its own.
func formatDate(pd pubmedPubDate, fallbackYear int) string {
	y := pd.Year
	if y == "" {
		y = strconv.Itoa(fallbackYear)
	}
	parts := []string{y}
	if pd.Month != "" {
		parts = append(parts, pd.Month)
	}
	if pd.Day != "" {
		parts = append(parts, pd.Day)
	}
	return strings.Join(parts, "-")
}
