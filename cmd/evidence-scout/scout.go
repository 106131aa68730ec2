// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/doctox25/longevity-evidence-scout/internal/archive"
	"github.com/doctox25/longevity-evidence-scout/internal/dedup"
	"github.com/doctox25/longevity-evidence-scout/internal/extract"
	"github.com/doctox25/longevity-evidence-scout/internal/httputil"
	"github.com/doctox25/longevity-evidence-scout/internal/index"
	"github.com/doctox25/longevity-evidence-scout/internal/pipeline"
	"github.com/doctox25/longevity-evidence-scout/internal/pubmed"
	"github.com/doctox25/longevity-evidence-scout/internal/scoring"
	"github.com/doctox25/longevity-evidence-scout/internal/secrets"
	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

// defaultQueries are the search queries used when the config names none.
var defaultQueries = []string{
	"longevity biomarkers blood",
	"biological age blood markers",
	"healthspan inflammation CRP",
	"aging metabolism glucose insulin",
	"cardiovascular biomarkers mortality",
}

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Run the full evidence pipeline once",
	Long: `Scout runs one full pipeline pass: for each configured search query it
searches PubMed, fetches abstracts, skips duplicates already in the archive,
classifies each record into a biomarker domain, extracts structured evidence
fields with Claude, scores evidence strength, and archives records at or
above the score threshold.

Single-record failures are counted and reported at the end; the run only
aborts when required credentials are missing or the context is cancelled.`,
	RunE: runScout,
}

func runScout(cmd *cobra.Command, args []string) error {
	cfg := scoutConfig()

	// Missing credentials are the only fatal precondition, checked before
	// any network work.
	creds := map[string]string{
		"anthropic-api-key": secrets.Resolve(loadedSecrets, "anthropic-api-key", "ANTHROPIC_KEY"),
		"airtable-api-key":  secrets.Resolve(loadedSecrets, "airtable-api-key", "AIRTABLE_API_KEY"),
		"airtable-base-id":  secrets.Resolve(loadedSecrets, "airtable-base-id", "AIRTABLE_BASE_ID"),
	}
	if err := secrets.Require(creds, "anthropic-api-key", "airtable-api-key", "airtable-base-id"); err != nil {
		return err
	}
	cfg.Extraction.APIKey = creds["anthropic-api-key"]
	cfg.Archive.APIKey = creds["airtable-api-key"]
	if cfg.Archive.BaseID == "" {
		cfg.Archive.BaseID = creds["airtable-base-id"]
	}

	taxonomy, err := loadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	out := os.Stdout

	fmt.Fprintf(out, "longevity evidence scout %s\n", version)
	fmt.Fprintf(out, "date filter: after %s\n", cfg.Search.DateAfter)
	fmt.Fprintf(out, "queries: %d, min score: %d\n\n", len(cfg.Search.Queries), cfg.Scoring.MinScore)

	archiver := archive.NewClient(cfg.Archive)

	ledger := dedup.New()
	ledger.Load(ctx, archiver, out)
	fmt.Fprintf(out, "loaded %d existing titles\n", ledger.Len())

	conditions := archiver.LoadReferenceTable(ctx, cfg.Archive.ConditionsTable, out)
	clusters := archiver.LoadReferenceTable(ctx, cfg.Archive.ClustersTable, out)

	p := &pipeline.Pipeline{
		Searcher: pubmed.NewClient(cfg.Search.HTTPConfig),
		Fetcher:  pubmed.NewClient(cfg.Search.HTTPConfig),
		Extractor: &extract.ClaudeBackend{
			APIKey: cfg.Extraction.APIKey,
			Model:  cfg.Extraction.Model,
		},
		Archiver:   archiver,
		Ledger:     ledger,
		Scorer:     scoring.New(cfg.Scoring.TopJournals),
		Taxonomy:   taxonomy,
		Conditions: conditions,
		Clusters:   clusters,
		Limiter:    httputil.NewLimiter(cfg.Search.FetchDelay),
		Queries:    cfg.Search.Queries,
		MaxResults: cfg.Search.MaxResults,
		DateAfter:  cfg.Search.DateAfter,
		MinScore:   cfg.Scoring.MinScore,
		Out:        out,
	}

	if cfg.Index.Enabled {
		store, err := index.Open(cfg.Index.Path)
		if err != nil {
			// The mirror is a convenience; a broken local database must not
			// block archiving.
			fmt.Fprintf(out, "warning: local mirror disabled: %v\n", err)
		} else {
			defer store.Close()
			p.Mirror = store
		}
	}

	_, err = p.Run(ctx)
	return err
}

// scoutConfig assembles the pipeline configuration from viper, applying the
// built-in defaults for everything the config file leaves unset.
func scoutConfig() types.PipelineConfig {
	viper.SetDefault("search.queries", defaultQueries)
	viper.SetDefault("search.date_after", "2024-06-01")
	viper.SetDefault("search.max_results", 25)
	viper.SetDefault("search.fetch_delay", 500*time.Millisecond)
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "evidence-scout/"+version)
	viper.SetDefault("scoring.min_score", 3)
	viper.SetDefault("archive.table", "Clinical_Evidence")
	viper.SetDefault("archive.conditions_table", "Aging_Conditions")
	viper.SetDefault("archive.clusters_table", "Biomarker_Clusters")
	viper.SetDefault("archive.timeout", 30*time.Second)
	viper.SetDefault("index.enabled", true)
	viper.SetDefault("index.path", "evidence.db")

	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: config unmarshal: %v\n", err)
	}
	return cfg
}

// loadTaxonomy reads a YAML taxonomy file, falling back to the built-in
// taxonomy when no file is configured.
func loadTaxonomy(path string) ([]types.TaxonomyEntry, error) {
	if path == "" {
		return types.DefaultTaxonomy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file: %w", err)
	}

	var tf types.TaxonomyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing taxonomy file %s: %w", path, err)
	}
	if len(tf.Taxonomy) == 0 {
		return nil, fmt.Errorf("taxonomy file %s defines no categories", path)
	}
	return tf.Taxonomy, nil
}

func init() {
	rootCmd.AddCommand(scoutCmd)
}
