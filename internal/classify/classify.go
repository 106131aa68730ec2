// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns a longevity research category to a literature
// record using weighted keyword matching over its title, abstract, and the
// originating search query.
package classify

import (
	"strings"

	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

// DefaultCategory is returned when no taxonomy entry scores above zero.
const DefaultCategory = "General_Longevity"

// fallbackPriority is the secondary classifier used when no taxonomy is
// configured: a fixed priority list of single keywords, first match wins.
// Matching is case-insensitive substring, identical to the primary path.
var fallbackPriority = []struct {
	keyword  string
	category string
}{
	{"telomere", "Longevity_Biomarkers"},
	{"epigenetic clock", "Longevity_Biomarkers"},
	{"inflammat", "Inflammation"},
	{"oxidative", "Oxidative_Stress"},
	{"glucose", "Aging_Metabolism"},
	{"insulin", "Aging_Metabolism"},
	{"cardiovascular", "Cardiovascular"},
	{"creatinine", "Kidney_Liver"},
	{"thyroid", "Thyroid_Hormones"},
	{"hemoglobin", "Blood_Counts"},
	{"vitamin", "Vitamins_Minerals"},
}

// Classify returns the taxonomy category for a record. The taxonomy is
// scanned in declaration order; ties keep the first entry, so taxonomy order
// is part of the contract.
//
// For each entry: any negative keyword occurring anywhere in the combined
// text excludes the entry outright. Otherwise every primary keyword adds the
// entry's title weight when found in the title, plus one when found in the
// abstract or query. Keywords are matched as case-insensitive substrings,
// with no word-boundary handling; short phrases can match inside longer
// words, which is a known limitation of this design.
//
// Classify is a pure function and always returns a label: the best-scoring
// category, or DefaultCategory when nothing scores.
func Classify(title, abstract, query string, taxonomy []types.TaxonomyEntry) string {
	titleText := strings.ToLower(title)
	bodyText := strings.ToLower(abstract + " " + query)
	combined := titleText + " " + bodyText

	if len(taxonomy) == 0 {
		return fallbackClassify(combined)
	}

	best := DefaultCategory
	bestScore := 0

	for _, entry := range taxonomy {
		if hasNegative(entry.NegativeKeywords, combined) {
			continue
		}

		weight := entry.TitleWeight
		if weight < 1 {
			weight = 1
		}

		score := 0
		for _, kw := range entry.Keywords {
			phrase := strings.ToLower(kw)
			if phrase == "" {
				continue
			}
			if strings.Contains(titleText, phrase) {
				score += weight
			}
			if strings.Contains(bodyText, phrase) {
				score++
			}
		}

		// Strict greater-than keeps the earliest entry on ties.
		if score > bestScore {
			best = entry.Category
			bestScore = score
		}
	}

	return best
}

// hasNegative reports whether any negative phrase occurs in the text.
func hasNegative(negatives []string, text string) bool {
	for _, n := range negatives {
		phrase := strings.ToLower(n)
		if phrase != "" && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// fallbackClassify walks the fixed priority list against the lowercased text.
func fallbackClassify(text string) string {
	for _, fp := range fallbackPriority {
		if strings.Contains(text, fp.keyword) {
			return fp.category
		}
	}
	return DefaultCategory
}
