// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doctox25/longevity-evidence-scout/internal/index"
	"github.com/doctox25/longevity-evidence-scout/internal/scoring"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Browse the local mirror of archived evidence",
	Long: `Index reads the local SQLite mirror written during scout runs. The
mirror is a read-only convenience; the Airtable base remains the source of
truth.`,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mirrored evidence, strongest first",
	RunE:  runIndexList,
}

func runIndexList(cmd *cobra.Command, args []string) error {
	path := viper.GetString("index.path")
	if path == "" {
		path = "evidence.db"
	}

	store, err := index.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	category, _ := cmd.Flags().GetString("category")
	minScore, _ := cmd.Flags().GetInt("min-score")
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := store.List(context.Background(), index.Filter{
		Category: category,
		MinScore: minScore,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatIndexOutput(entries, jsonOutput)
}

func formatIndexOutput(entries []index.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No evidence found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-15s  %-7s  %-50s  %-22s  %-20s  %s\n",
		"ID", "Score", "Title", "Category", "Type", "Year")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))

	for _, e := range entries {
		title := e.StudyTitle
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		etype := e.EvidenceType
		if len(etype) > 20 {
			etype = etype[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-15s  %-7s  %-50s  %-22s  %-20s  %s\n",
			e.EvidenceID, scoring.Stars(e.Score), title, e.Category, etype, e.Year)
	}

	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
	return nil
}

func init() {
	indexListCmd.Flags().String("category", "", "filter by taxonomy category")
	indexListCmd.Flags().Int("min-score", 0, "minimum evidence score")
	indexListCmd.Flags().Int("limit", 0, "maximum entries (0 = all)")
	indexListCmd.Flags().Bool("json", false, "output entries as JSON")

	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}
