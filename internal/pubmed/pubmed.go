// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI eutils API for article identifiers and
// per-article metadata.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

// Endpoint bases. Declared as vars so tests can substitute an httptest server.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// eligibilityFilter narrows every query to human studies in the longevity
// domain. Appended verbatim to each configured search query.
const eligibilityFilter = "human[MeSH Terms] AND (longevity OR aging OR biomarker OR healthspan)"

// ErrNotFound indicates the requested article does not exist or returned no
// parseable entry. The pipeline treats this as "skip this id", not a failure.
var ErrNotFound = errors.New("pubmed: article not found")

// Client queries PubMed. The zero value is not usable; construct with NewClient.
type Client struct {
	http      *http.Client
	userAgent string
	now       func() time.Time
}

// NewClient returns a Client using the given HTTP settings.
func NewClient(cfg types.HTTPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		now:       time.Now,
	}
}

// Search returns the PMIDs matching the query, most recent first. The fixed
// eligibility filter is appended and results are bounded by max and the
// dateAfter publication floor (YYYY-MM-DD).
func (c *Client) Search(ctx context.Context, query string, max int, dateAfter string) ([]string, error) {
	if max <= 0 {
		max = 25
	}

	params := url.Values{
		"db":       {"pubmed"},
		"term":     {fmt.Sprintf("(%s) AND %s", query, eligibilityFilter)},
		"retmax":   {fmt.Sprintf("%d", max)},
		"retmode":  {"json"},
		"sort":     {"date"},
		"mindate":  {strings.ReplaceAll(dateAfter, "-", "/")},
		"maxdate":  {c.now().Format("2006/01/02")},
		"datetype": {"pdat"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, esearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PubMed search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed search returned HTTP %d", resp.StatusCode)
	}

	var sr esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed search response: %w", err)
	}

	return sr.Result.IDList, nil
}

// Fetch returns the metadata Record for one PMID. A well-formed response
// containing no article yields ErrNotFound.
func (c *Client) Fetch(ctx context.Context, pmid string) (*types.Record, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"xml"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, efetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PubMed fetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed fetch returned HTTP %d", resp.StatusCode)
	}

	var set efetchArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing PubMed fetch response: %w", err)
	}

	if len(set.Articles) == 0 {
		return nil, fmt.Errorf("fetching PMID %s: %w", pmid, ErrNotFound)
	}

	a := set.Articles[0]
	rec := &types.Record{
		PMID:     pmid,
		Title:    strings.TrimSpace(a.Title),
		Abstract: firstNonEmpty(a.AbstractText),
		Journal:  strings.TrimSpace(a.Journal),
		Year:     a.Year,
		Month:    a.Month,
		URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
	}

	for _, au := range a.Authors {
		if au.LastName == "" {
			continue
		}
		rec.Authors = append(rec.Authors, strings.TrimSpace(au.LastName+" "+au.Initials))
	}

	return rec, nil
}

// firstNonEmpty returns the first non-blank abstract section. Structured
// abstracts carry several AbstractText nodes; the archive keys off the first,
// matching the upstream record layout used when the table was designed.
func firstNonEmpty(parts []string) string {
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			return s
		}
	}
	return ""
}

// esearch JSON structures.
type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// efetch XML structures.
type efetchArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []efetchArticle `xml:"PubmedArticle"`
}

type efetchArticle struct {
	Title        string         `xml:"MedlineCitation>Article>ArticleTitle"`
	AbstractText []string       `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Journal      string         `xml:"MedlineCitation>Article>Journal>Title"`
	Year         string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	Month        string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Month"`
	Authors      []efetchAuthor `xml:"MedlineCitation>Article>AuthorList>Author"`
}

type efetchAuthor struct {
	LastName string `xml:"LastName"`
	Initials string `xml:"Initials"`
}
