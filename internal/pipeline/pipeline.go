// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the scout run: search, fetch, dedup, classify,
// extract, score, threshold, archive. Execution is strictly sequential, one
// query and one record at a time, and no single record's failure may abort
// the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/doctox25/longevity-evidence-scout/internal/archive"
	"github.com/doctox25/longevity-evidence-scout/internal/classify"
	"github.com/doctox25/longevity-evidence-scout/internal/dedup"
	"github.com/doctox25/longevity-evidence-scout/internal/extract"
	"github.com/doctox25/longevity-evidence-scout/internal/httputil"
	"github.com/doctox25/longevity-evidence-scout/internal/pubmed"
	"github.com/doctox25/longevity-evidence-scout/internal/scoring"
	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

// Searcher returns the record identifiers matching one query.
type Searcher interface {
	Search(ctx context.Context, query string, max int, dateAfter string) ([]string, error)
}

// Fetcher returns the metadata record for one identifier.
type Fetcher interface {
	Fetch(ctx context.Context, pmid string) (*types.Record, error)
}

// Archiver appends one accepted row to the external evidence store.
type Archiver interface {
	CreateEvidence(ctx context.Context, fields archive.EvidenceFields) error
}

// Mirror receives a local copy of each archived row. Optional.
type Mirror interface {
	Insert(ctx context.Context, fields archive.EvidenceFields) error
}

// Stats counts run outcomes. A single Stats value travels through the run
// and is reported at the end; every recovered error shows up in Errors.
type Stats struct {
	Found          int
	Fetched        int
	Duplicates     int
	BelowThreshold int
	Archived       int
	Errors         int
}

// conditionKeys maps taxonomy categories to the aging-condition reference
// entry each one cross-links to.
var conditionKeys = map[string]string{
	"Aging_Metabolism":     "metabolic aging",
	"Inflammation":         "inflammaging",
	"Oxidative_Stress":     "oxidative damage",
	"Cardiovascular":       "vascular aging",
	"Kidney_Liver":         "organ decline",
	"Thyroid_Hormones":     "endocrine aging",
	"Blood_Counts":         "hematologic aging",
	"Longevity_Biomarkers": "biological aging",
	"Vitamins_Minerals":    "nutrient deficiency",
}

// Pipeline wires the collaborators for one scout run. All fields except
// Mirror, Conditions, and Clusters are required.
type Pipeline struct {
	Searcher  Searcher
	Fetcher   Fetcher
	Extractor extract.Backend
	Archiver  Archiver
	Mirror    Mirror

	Ledger     *dedup.Ledger
	Scorer     *scoring.Scorer
	Taxonomy   []types.TaxonomyEntry
	Conditions archive.ReferenceCache
	Clusters   archive.ReferenceCache
	Limiter    *httputil.Limiter

	Queries    []string
	MaxResults int
	DateAfter  string
	MinScore   int

	// Now supplies timestamps for evidence IDs. Defaults to time.Now.
	Now func() time.Time

	// Out receives progress and the end-of-run summary.
	Out io.Writer
}

// Run executes the full pipeline over every configured query. It returns
// the run statistics; the only error it returns is context cancellation.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	now := p.Now
	if now == nil {
		now = time.Now
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	for i, query := range p.Queries {
		fmt.Fprintf(out, "[%d/%d] searching: %s\n", i+1, len(p.Queries), query)

		ids, err := p.Searcher.Search(ctx, query, p.MaxResults, p.DateAfter)
		if err != nil {
			fmt.Fprintf(out, "warning: search failed: %v\n", err)
			stats.Errors++
			continue
		}
		stats.Found += len(ids)
		fmt.Fprintf(out, "  found %d articles\n", len(ids))

		for _, id := range ids {
			if err := p.Limiter.Wait(ctx); err != nil {
				return stats, err
			}
			if err := p.processRecord(ctx, id, query, now, out, &stats); err != nil {
				return stats, err
			}
		}
	}

	p.summarize(out, stats, now())
	return stats, nil
}

// processRecord runs the per-record state sequence. It returns an error only
// on context cancellation; every per-record failure is counted and absorbed.
func (p *Pipeline) processRecord(ctx context.Context, id, query string, now func() time.Time, out io.Writer, stats *Stats) error {
	rec, err := p.Fetcher.Fetch(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, pubmed.ErrNotFound) {
			return nil
		}
		fmt.Fprintf(out, "  warning: fetching %s: %v\n", id, err)
		stats.Errors++
		return nil
	}
	stats.Fetched++

	// No abstract means nothing to classify or extract. Expected absence,
	// not a failure.
	if rec.Abstract == "" {
		return nil
	}

	if p.Ledger.Contains(rec.Title) {
		fmt.Fprintf(out, "  duplicate: %s\n", shorten(rec.Title))
		stats.Duplicates++
		return nil
	}

	category := classify.Classify(rec.Title, rec.Abstract, query, p.Taxonomy)

	fmt.Fprintf(out, "  analyzing: %s\n", shorten(rec.Title))
	fields, err := p.Extractor.Extract(ctx, *rec, category)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		fmt.Fprintf(out, "  warning: extracting %s: %v\n", id, err)
		stats.Errors++
		return nil
	}

	stars := p.Scorer.Score(fields.EvidenceType, fields.SampleSize, rec.Journal, fields.EffectSize)
	if stars < p.MinScore {
		fmt.Fprintf(out, "  below threshold (%s)\n", scoring.Stars(stars))
		stats.BelowThreshold++
		return nil
	}

	row := p.buildRow(rec, fields, category, stars, now(), stats.Archived)
	if err := p.Archiver.CreateEvidence(ctx, row); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		fmt.Fprintf(out, "  warning: archiving %s: %v\n", id, err)
		stats.Errors++
		return nil
	}
	stats.Archived++
	p.Ledger.Add(rec.Title)
	fmt.Fprintf(out, "  archived: %s | %s\n", scoring.Stars(stars), category)

	if p.Mirror != nil {
		if err := p.Mirror.Insert(ctx, row); err != nil {
			fmt.Fprintf(out, "  warning: local mirror: %v\n", err)
		}
	}
	return nil
}

// buildRow assembles the archive row for one accepted record, attaching
// cross-references from the reference caches when they resolve.
func (p *Pipeline) buildRow(rec *types.Record, fields types.ExtractedFields, category string, stars int, now time.Time, seq int) archive.EvidenceFields {
	row := archive.EvidenceFields{
		EvidenceID:        archive.EvidenceID(now, seq),
		StudyTitle:        rec.Title,
		Authors:           archive.FormatAuthors(rec.Authors),
		Year:              rec.Year,
		Journal:           rec.Journal,
		LongevityDomain:   category,
		EvidenceType:      fields.EvidenceType,
		SampleSize:        fields.SampleSize,
		Population:        fields.Population,
		BiomarkersStudied: strings.Join(fields.BiomarkersStudied, ", "),
		KeyFindings:       fields.KeyFindings,
		EffectSize:        fields.EffectSize,
		AgeRelevance:      fields.AgeRelevance,
		ClinicalRelevance: fields.ClinicalRelevance,
		Limitations:       fields.Limitations,
		Intervention:      fields.InterventionTested,
		StrengthScore:     scoring.Stars(stars),
		Score:             stars,
		SourceURL:         rec.URL,
		AddedDate:         now.Format(time.RFC3339),
	}

	if key, ok := conditionKeys[category]; ok {
		if id := p.Conditions.Lookup(key); id != "" {
			row.AgingConditions = []string{id}
		}
	}

	seen := map[string]bool{}
	for _, biomarker := range fields.BiomarkersStudied {
		if id := p.Clusters.Lookup(biomarker); id != "" && !seen[id] {
			seen[id] = true
			row.BiomarkerLinks = append(row.BiomarkerLinks, id)
		}
	}

	return row
}

func (p *Pipeline) summarize(out io.Writer, stats Stats, done time.Time) {
	fmt.Fprintf(out, "\nsummary\n")
	fmt.Fprintf(out, "  articles found:     %d\n", stats.Found)
	fmt.Fprintf(out, "  abstracts fetched:  %d\n", stats.Fetched)
	fmt.Fprintf(out, "  duplicates skipped: %d\n", stats.Duplicates)
	fmt.Fprintf(out, "  below threshold:    %d\n", stats.BelowThreshold)
	fmt.Fprintf(out, "  archived:           %d\n", stats.Archived)
	fmt.Fprintf(out, "  errors:             %d\n", stats.Errors)
	fmt.Fprintf(out, "  completed:          %s\n", done.Format("2006-01-02 15:04:05"))
}

func shorten(title string) string {
	if len(title) <= 50 {
		return title
	}
	return title[:47] + "..."
}
