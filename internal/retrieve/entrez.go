// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/litmine/internal/httputil"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// esearchRetMax caps the PMIDs returned per year before sampling.
const esearchRetMax = 50000

// entrezClient issues ESearch and EFetch calls against the NCBI
// E-utilities API.
type entrezClient struct {
	client *http.Client
	pacer  *httputil.Pacer

	email     string
	apiKey    string
	userAgent string
}

// common adds the identification parameters NCBI asks polite clients to send.
func (c *entrezClient) common(params url.Values) {
	params.Set("db", "pubmed")
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
}

func (c *entrezClient) get(ctx context.Context, base string, params url.Values) (*http.Response, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("E-utilities request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}
	return resp, nil
}

// esearch returns the PMIDs matching term.
func (c *entrezClient) esearch(ctx context.Context, term string) ([]string, error) {
	params := url.Values{
		"term":    {term},
		"retmax":  {fmt.Sprintf("%d", esearchRetMax)},
		"retmode": {"json"},
	}
	c.common(params)

	resp, err := c.get(ctx, esearchBase, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var er esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing ESearch response: %w", err)
	}
	return er.Result.IDList, nil
}

// efetch fetches full article records for a batch of PMIDs.
func (c *entrezClient) efetch(ctx context.Context, pmids []string) ([]pubmedArticle, error) {
	params := url.Values{
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}
	c.common(params)

	resp, err := c.get(ctx, efetchBase, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing EFetch response: %w", err)
	}
	return set.Articles, nil
}

// ESearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// EFetch XML structures (PubMed article set).
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article pubmedDetails `xml:"Article"`
}

type pubmedDetails struct {
	Title            string         `xml:"ArticleTitle"`
	AbstractText     []string       `xml:"Abstract>AbstractText"`
	Journal          pubmedJournal  `xml:"Journal"`
	PublicationTypes []string       `xml:"PublicationTypeList>PublicationType"`
}

type pubmedJournal struct {
	Title   string        `xml:"Title"`
	PubDate pubmedPubDate `xml:"JournalIssue>PubDate"`
}

type pubmedPubDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}
