// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TaxonomyEntry defines the keyword rules for one longevity research category.
// The taxonomy is an ordered list, not a map: when two categories score the
// same, the one declared first wins. Reordering entries changes tie-break
// results, so declaration order is part of the configuration contract.
type TaxonomyEntry struct {
	// Category is the unique label for this taxonomy bucket.
	Category string `json:"category" yaml:"category"`

	// Keywords are the primary phrases matched case-insensitively as
	// substrings against a record's title, abstract, and originating query.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// NegativeKeywords exclude this category for a record when any phrase
	// occurs anywhere in its text, regardless of primary keyword matches.
	NegativeKeywords []string `json:"negative_keywords,omitempty" yaml:"negative_keywords,omitempty"`

	// TitleWeight is the score added per primary keyword found in the title.
	// Values below 1 are treated as 1.
	TitleWeight int `json:"title_weight" yaml:"title_weight"`
}

// TaxonomyFile is the on-disk shape of a taxonomy configuration file.
type TaxonomyFile struct {
	Taxonomy []TaxonomyEntry `json:"taxonomy" yaml:"taxonomy"`
}

// DefaultTaxonomy returns the built-in longevity biomarker taxonomy used when
// no taxonomy file is configured. Order is significant (tie-break contract).
func DefaultTaxonomy() []TaxonomyEntry {
	return []TaxonomyEntry{
		{
			Category: "Aging_Metabolism",
			Keywords: []string{
				"glucose", "insulin", "hba1c", "fasting glucose", "ogtt",
				"metabolic", "diabetes", "prediabetes", "insulin resistance",
				"triglycerides", "cholesterol", "ldl", "hdl", "apob",
			},
			TitleWeight: 2,
		},
		{
			Category: "Inflammation",
			Keywords: []string{
				"crp", "c-reactive protein", "hscrp", "interleukin", "il-6",
				"tnf-alpha", "inflammation", "inflammatory", "cytokine",
				"inflammaging", "chronic inflammation", "nf-kb",
			},
			NegativeKeywords: []string{"anti-inflammatory drug synthesis"},
			TitleWeight:      2,
		},
		{
			Category: "Oxidative_Stress",
			Keywords: []string{
				"oxidative stress", "reactive oxygen", "ros", "antioxidant",
				"glutathione", "malondialdehyde", "8-ohdg", "isoprostanes",
				"lipid peroxidation", "superoxide dismutase", "catalase",
			},
			TitleWeight: 2,
		},
		{
			Category: "Cardiovascular",
			Keywords: []string{
				"homocysteine", "lp(a)", "lipoprotein", "apolipoprotein",
				"arterial stiffness", "pulse wave", "carotid", "atherosclerosis",
				"endothelial", "blood pressure", "hypertension", "cardiovascular",
			},
			TitleWeight: 2,
		},
		{
			Category: "Kidney_Liver",
			Keywords: []string{
				"creatinine", "egfr", "bun", "cystatin c", "uric acid",
				"alt", "ast", "ggt", "albumin", "bilirubin", "liver function",
				"kidney function", "renal", "hepatic",
			},
			TitleWeight: 2,
		},
		{
			Category: "Thyroid_Hormones",
			Keywords: []string{
				"tsh", "t3", "t4", "thyroid", "free t3", "free t4",
				"testosterone", "estrogen", "dhea", "cortisol", "hormone",
				"endocrine", "igf-1", "growth hormone",
			},
			TitleWeight: 2,
		},
		{
			Category: "Blood_Counts",
			Keywords: []string{
				"hemoglobin", "hematocrit", "rbc", "wbc", "platelet",
				"neutrophil", "lymphocyte", "monocyte", "complete blood count",
				"anemia", "red blood cell", "white blood cell",
			},
			TitleWeight: 2,
		},
		{
			Category: "Longevity_Biomarkers",
			Keywords: []string{
				"telomere", "telomerase", "epigenetic clock", "dna methylation",
				"biological age", "senescence", "senolytics", "nad+", "sirtuin",
				"ampk", "mtor", "autophagy", "mitochondrial function",
			},
			TitleWeight: 2,
		},
		{
			Category: "Vitamins_Minerals",
			Keywords: []string{
				"vitamin d", "25-hydroxyvitamin", "vitamin b12", "folate",
				"ferritin", "iron", "zinc", "magnesium", "selenium",
				"omega-3", "vitamin k", "deficiency",
			},
			TitleWeight: 2,
		},
	}
}
