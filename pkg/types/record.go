// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-scout pipeline.
package types

// Record holds the metadata for one literature item fetched from PubMed.
// Records are immutable once fetched; downstream stages read them only.
type Record struct {
	// PMID is the stable PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Abstract is the article abstract. May be empty; records without an
	// abstract are skipped by the pipeline.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Journal is the publication venue name.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year as reported by the source (e.g. "2025").
	Year string `json:"year" yaml:"year"`

	// Month is the publication month, when present.
	Month string `json:"month,omitempty" yaml:"month,omitempty"`

	// Authors lists the article authors in source order ("Lastname Initials").
	Authors []string `json:"authors" yaml:"authors"`

	// URL is the canonical PubMed page for this record.
	URL string `json:"url" yaml:"url"`
}

// ExtractedFields is the structured output the extraction backend produces
// from a record's title and abstract. The field set is fixed; responses that
// do not conform are rejected at the extraction boundary.
type ExtractedFields struct {
	// EvidenceType is the study design label (e.g. "Meta-analysis", "RCT",
	// "Prospective cohort", "Cross-sectional").
	EvidenceType string `json:"evidence_type" yaml:"evidence_type"`

	// SampleSize is the number of participants as free text, or "Not reported".
	SampleSize string `json:"sample_size" yaml:"sample_size"`

	// Population describes the study population.
	Population string `json:"population" yaml:"population"`

	// BiomarkersStudied lists the biomarkers examined by the study.
	BiomarkersStudied []string `json:"biomarkers_studied" yaml:"biomarkers_studied"`

	// KeyFindings summarizes the main findings in two or three sentences.
	KeyFindings string `json:"key_findings" yaml:"key_findings"`

	// EffectSize is the quantified effect (HR, OR, correlation) or "Not reported".
	EffectSize string `json:"effect_size" yaml:"effect_size"`

	// AgeRelevance states how the findings relate to aging or longevity.
	AgeRelevance string `json:"age_relevance" yaml:"age_relevance"`

	// ClinicalRelevance states practical implications for healthspan optimization.
	ClinicalRelevance string `json:"clinical_relevance" yaml:"clinical_relevance"`

	// Limitations lists the key study limitations.
	Limitations string `json:"limitations" yaml:"limitations"`

	// InterventionTested names the studied intervention, or "Observational only".
	InterventionTested string `json:"intervention_tested" yaml:"intervention_tested"`
}
