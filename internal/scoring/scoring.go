// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring rates the evidence strength of a study on a 1-5 scale from
// its design, sample size, publication venue, and effect-size reporting.
package scoring

import (
	"math"
	"strconv"
	"strings"
)

// DefaultTopJournals lists high-impact venues for longevity and aging
// research, matched case-insensitively as substrings of the journal name.
var DefaultTopJournals = []string{
	"nature aging", "cell metabolism", "aging cell",
	"nature medicine", "lancet healthy longevity", "jama",
	"nejm", "lancet", "bmj", "journals of gerontology",
	"geroscience", "aging", "nature", "science", "cell",
	"annals of internal medicine", "circulation", "diabetes care",
}

// designTiers maps study-design patterns to their point value, most
// authoritative first. The first tier with a matching pattern wins.
var designTiers = []struct {
	patterns []string
	points   float64
}{
	{[]string{"meta-analysis", "systematic review"}, 2.5},
	{[]string{"randomized", "rct"}, 2.2},
	{[]string{"prospective", "longitudinal"}, 1.8},
	{[]string{"cohort", "case-control"}, 1.4},
	{[]string{"cross-sectional", "population", "registry"}, 1.0},
	{[]string{"case series", "case report"}, 0.5},
}

// designBaseline is the contribution for design text matching no tier.
const designBaseline = 0.3

// sampleTiers maps minimum participant counts to their point value.
var sampleTiers = []struct {
	min    int
	points float64
}{
	{10000, 1.5},
	{1000, 1.2},
	{500, 1.0},
	{100, 0.5},
	{50, 0.25},
}

// notReportedSentinels are effect-size values that carry no bonus.
var notReportedSentinels = map[string]bool{
	"":             true,
	"not reported": true,
	"n/a":          true,
	"none":         true,
}

// quantifiedMarkers indicate a quantified exposure-response relationship in
// the effect-size text, worth a small additional bonus.
var quantifiedMarkers = []string{
	"per quartile", "per tertile", "per sd", "per standard deviation",
	"dose-response", "per unit", "per year", "per 1", "trend",
}

// Scorer computes evidence strength scores against a journal prestige list.
type Scorer struct {
	topJournals []string
}

// New returns a Scorer using the given high-impact journal list, or
// DefaultTopJournals when the list is empty.
func New(topJournals []string) *Scorer {
	if len(topJournals) == 0 {
		topJournals = DefaultTopJournals
	}
	return &Scorer{topJournals: topJournals}
}

// Score computes the 1-5 evidence strength rating for a study. Each factor
// contributes independently; the sum is rounded half-up and clamped to [1,5].
// Unparseable sample sizes contribute zero rather than failing.
func (s *Scorer) Score(studyDesign, sampleSize, venue, effectSize string) int {
	sum := designPoints(studyDesign) +
		samplePoints(sampleSize) +
		s.venuePoints(venue) +
		effectPoints(effectSize)

	score := int(math.Floor(sum + 0.5))
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}

func designPoints(design string) float64 {
	d := strings.ToLower(design)
	for _, tier := range designTiers {
		for _, p := range tier.patterns {
			if strings.Contains(d, p) {
				return tier.points
			}
		}
	}
	return designBaseline
}

// samplePoints parses the leading integer of the sample-size text (thousands
// separators stripped, first whitespace token only) and maps it onto the
// size-tier ladder. Text with no leading integer contributes zero.
func samplePoints(sampleSize string) float64 {
	n, ok := parseSampleSize(sampleSize)
	if !ok {
		return 0
	}
	for _, tier := range sampleTiers {
		if n >= tier.min {
			return tier.points
		}
	}
	return 0
}

func parseSampleSize(text string) (int, bool) {
	fields := strings.Fields(strings.ReplaceAll(text, ",", ""))
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Scorer) venuePoints(venue string) float64 {
	v := strings.ToLower(venue)
	for _, top := range s.topJournals {
		if strings.Contains(v, top) {
			return 1.0
		}
	}
	return 0.3
}

func effectPoints(effectSize string) float64 {
	e := strings.ToLower(strings.TrimSpace(effectSize))
	if notReportedSentinels[e] {
		return 0
	}
	points := 0.5
	for _, m := range quantifiedMarkers {
		if strings.Contains(e, m) {
			points += 0.25
			break
		}
	}
	return points
}

// Stars renders a score as the archive's star-rating string: n filled stars
// padded with spaces to a fixed width of five.
func Stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("⭐", n) + strings.Repeat(" ", 5-n)
}
