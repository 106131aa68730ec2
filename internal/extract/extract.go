// Package extract converts a record's free-text abstract into the structured
// evidence fields the archive stores.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/doctox25/longevity-evidence-scout/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// Implementations receive one record plus its assigned category and return
// the structured field set, or an error when the response does not conform.
type Backend interface {
	Extract(ctx context.Context, rec types.Record, category string) (types.ExtractedFields, error)
}

// extractionPromptTmpl is the prompt sent to the Claude API for each record.
// It embeds title, abstract, journal, and the detected category, and
// instructs the model to return only the structured fields with no
// surrounding prose.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`Analyze this longevity/healthspan research article and extract structured information.

TITLE: {{.Title}}

ABSTRACT: {{.Abstract}}

JOURNAL: {{.Journal}}

DETECTED DOMAIN: {{.Category}}

Extract the following in JSON format:
{
    "evidence_type": "Study design (e.g., 'Meta-analysis', 'RCT', 'Prospective cohort', 'Cross-sectional')",
    "sample_size": "Number of participants or 'Not reported'",
    "population": "Study population description",
    "biomarkers_studied": ["list", "of", "biomarkers"],
    "key_findings": "2-3 sentence summary of main findings relevant to longevity/healthspan",
    "effect_size": "Quantified effect (HR, OR, correlation, etc.) or 'Not reported'",
    "age_relevance": "How findings relate to aging/longevity (e.g., 'mortality risk', 'biological age', 'disease incidence')",
    "clinical_relevance": "Practical implications for healthspan optimization",
    "limitations": "Key study limitations",
    "intervention_tested": "If applicable, what intervention was studied (e.g., diet, exercise, supplement) or 'Observational only'"
}

Return ONLY valid JSON, no markdown formatting.`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const defaultModel = "claude-sonnet-4-20250514"

// ClaudeBackend calls the Claude Messages API to extract evidence fields.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract calls the Claude API for one record. The model's text response
// must be the JSON object and nothing else; any non-conforming response is
// an extraction failure, never repaired best-effort.
func (c *ClaudeBackend) Extract(ctx context.Context, rec types.Record, category string) (types.ExtractedFields, error) {
	prompt, err := renderPrompt(rec, category)
	if err != nil {
		return types.ExtractedFields{}, fmt.Errorf("rendering prompt: %w", err)
	}

	model := c.Model
	if model == "" {
		model = defaultModel
	}

	reqBody := claudeRequest{
		Model:     model,
		MaxTokens: 1500,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.ExtractedFields{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.ExtractedFields{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return types.ExtractedFields{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.ExtractedFields{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return types.ExtractedFields{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return parseFields(block.Text)
	}

	return types.ExtractedFields{}, fmt.Errorf("no text content in Claude API response")
}

// parseFields decodes the model output under a strict contract: the text
// must be exactly one JSON object with only the expected keys. Markdown
// fences or trailing prose fail the parse.
func parseFields(text string) (types.ExtractedFields, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var fields types.ExtractedFields
	if err := dec.Decode(&fields); err != nil {
		return types.ExtractedFields{}, fmt.Errorf("parsing extraction JSON: %w", err)
	}
	if dec.More() {
		return types.ExtractedFields{}, fmt.Errorf("parsing extraction JSON: trailing data after object")
	}
	if fields.EvidenceType == "" {
		return types.ExtractedFields{}, fmt.Errorf("extraction response missing evidence_type")
	}
	return fields, nil
}

// renderPrompt executes the extraction prompt template for one record.
func renderPrompt(rec types.Record, category string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Title    string
		Abstract string
		Journal  string
		Category string
	}{rec.Title, rec.Abstract, rec.Journal, category}
	if err := extractionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
