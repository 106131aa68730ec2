// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists accepted evidence rows to an Airtable base and
// reads back reference data for dedup seeding and cross-linking.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

// airtableAPIBase is the Airtable REST endpoint. Declared as a var so tests
// can substitute an httptest server.
var airtableAPIBase = "https://api.airtable.com/v0"

// Airtable field limits for long text columns.
const (
	maxTitleLen      = 500
	maxBiomarkersLen = 1000
)

const pageSize = 100

// EvidenceFields is one assembled archive row. JSON tags match the Airtable
// column names of the Clinical_Evidence table.
type EvidenceFields struct {
	EvidenceID        string `json:"evidence_id"`
	StudyTitle        string `json:"study_title"`
	Authors           string `json:"authors"`
	Year              string `json:"year"`
	Journal           string `json:"journal"`
	LongevityDomain   string `json:"longevity_domain"`
	EvidenceType      string `json:"evidence_type"`
	SampleSize        string `json:"sample_size"`
	Population        string `json:"population"`
	BiomarkersStudied string `json:"biomarkers_studied"`
	KeyFindings       string `json:"key_findings"`
	EffectSize        string `json:"effect_size"`
	AgeRelevance      string `json:"age_relevance"`
	ClinicalRelevance string `json:"clinical_relevance"`
	Limitations       string `json:"limitations"`
	Intervention      string `json:"intervention_tested"`
	StrengthScore     string `json:"evidence_strength_score"`
	Score             int    `json:"score"`
	SourceURL         string `json:"source_url"`
	AddedDate         string `json:"added_date"`

	// Linked-record references into the reference tables. Omitted when the
	// caches are empty or nothing matched.
	AgingConditions []string `json:"aging_conditions,omitempty"`
	BiomarkerLinks  []string `json:"biomarker_links,omitempty"`
}

// Client talks to one Airtable base.
type Client struct {
	apiKey string
	baseID string
	table  string
	http   *http.Client
}

// NewClient returns a Client for the evidence table.
func NewClient(cfg types.ArchiveConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	table := cfg.Table
	if table == "" {
		table = "Clinical_Evidence"
	}
	return &Client{
		apiKey: cfg.APIKey,
		baseID: cfg.BaseID,
		table:  table,
		http:   &http.Client{Timeout: timeout},
	}
}

// CreateEvidence appends one row to the evidence table. Long text fields are
// truncated to the table's column limits before upload.
func (c *Client) CreateEvidence(ctx context.Context, fields EvidenceFields) error {
	fields.StudyTitle = truncate(fields.StudyTitle, maxTitleLen)
	fields.BiomarkersStudied = truncate(fields.BiomarkersStudied, maxBiomarkersLen)

	body, err := json.Marshal(struct {
		Fields EvidenceFields `json:"fields"`
	}{fields})
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(c.table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("Airtable create request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Airtable create returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// ExistingTitles pages through the evidence table and returns every stored
// study title. A 404 means the table has not been created yet: that is a
// normal first-run condition and yields an empty list, not an error.
func (c *Client) ExistingTitles(ctx context.Context) ([]string, error) {
	var titles []string
	offset := ""

	for {
		page, next, err := c.titlePage(ctx, offset)
		if err != nil {
			return nil, err
		}
		if page == nil && next == "" {
			// Table missing: empty ledger.
			return []string{}, nil
		}
		titles = append(titles, page...)
		if next == "" {
			return titles, nil
		}
		offset = next
	}
}

func (c *Client) titlePage(ctx context.Context, offset string) ([]string, string, error) {
	params := url.Values{
		"fields[]": {"study_title"},
		"pageSize": {fmt.Sprintf("%d", pageSize)},
	}
	if offset != "" {
		params.Set("offset", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(c.table)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("Airtable list request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("Airtable list returned HTTP %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, "", fmt.Errorf("parsing Airtable list response: %w", err)
	}

	titles := make([]string, 0, len(lr.Records))
	for _, rec := range lr.Records {
		if t, _ := rec.Fields["study_title"].(string); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, lr.Offset, nil
}

// ReferenceCache maps lowercased reference-entry names to Airtable record IDs.
type ReferenceCache map[string]string

// Lookup returns the record ID whose name occurs in text (case-insensitive
// substring), or "" when nothing matches.
func (rc ReferenceCache) Lookup(text string) string {
	t := strings.ToLower(text)
	for name, id := range rc {
		if strings.Contains(t, name) {
			return id
		}
	}
	return ""
}

// LoadReferenceTable reads an auxiliary reference table in full, keyed by its
// "name" field. The cache is read once at run start; a missing table or any
// transport error yields an empty cache so cross-linking degrades quietly.
func (c *Client) LoadReferenceTable(ctx context.Context, table string, w io.Writer) ReferenceCache {
	cache := ReferenceCache{}
	if table == "" {
		return cache
	}

	offset := ""
	for {
		params := url.Values{"pageSize": {fmt.Sprintf("%d", pageSize)}}
		if offset != "" {
			params.Set("offset", offset)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil)
		if err != nil {
			fmt.Fprintf(w, "warning: reference table %s: %v\n", table, err)
			return ReferenceCache{}
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			fmt.Fprintf(w, "warning: reference table %s: %v\n", table, err)
			return ReferenceCache{}
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			fmt.Fprintf(w, "reference table %s not found, cross-links disabled\n", table)
			return ReferenceCache{}
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			fmt.Fprintf(w, "warning: reference table %s returned HTTP %d\n", table, resp.StatusCode)
			return ReferenceCache{}
		}

		var lr listResponse
		err = json.NewDecoder(resp.Body).Decode(&lr)
		resp.Body.Close()
		if err != nil {
			fmt.Fprintf(w, "warning: reference table %s: %v\n", table, err)
			return ReferenceCache{}
		}

		for _, rec := range lr.Records {
			if name, _ := rec.Fields["name"].(string); name != "" {
				cache[strings.ToLower(strings.TrimSpace(name))] = rec.ID
			}
		}

		if lr.Offset == "" {
			fmt.Fprintf(w, "loaded %d entries from reference table %s\n", len(cache), table)
			return cache
		}
		offset = lr.Offset
	}
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", airtableAPIBase, c.baseID, url.PathEscape(table))
}

// listResponse is the Airtable record-list envelope.
type listResponse struct {
	Records []struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// EvidenceID builds the unique per-row identifier from the run clock and a
// monotonically incrementing sequence number, unique within a run.
func EvidenceID(now time.Time, seq int) string {
	return fmt.Sprintf("LONG_%s%02d", now.Format("01021504"), seq)
}

// FormatAuthors renders the author list for the archive: first five authors,
// comma-separated, with "et al." appended for longer lists.
func FormatAuthors(authors []string) string {
	if len(authors) <= 5 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:5], ", ") + " et al."
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
