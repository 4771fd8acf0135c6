// Package llm - classifier.go provides AI-assisted taxonomy field detection
// for crawled page content.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/karim/freezone-audit/internal/prompts"
	"github.com/karim/freezone-audit/internal/schemas"
	"github.com/karim/freezone-audit/internal/taxonomy"
)

// maxClassifyInput bounds the page text sent to the model.
const maxClassifyInput = 8000

// maxSummaryLength bounds the content summary carried into snapshots.
const maxSummaryLength = 500

// classificationSchema validates the model output shape. Any response that
// fails validation is treated like a network failure: an empty result, never
// a parsing error surfaced to pipeline logic.
const classificationSchema = `{
	"type": "object",
	"required": ["fields_found", "content_summary"],
	"properties": {
		"fields_found": {
			"type": "array",
			"items": {"type": "string"}
		},
		"content_summary": {"type": "string"}
	},
	"additionalProperties": false
}`

// ClassificationError represents a transport failure while classifying.
type ClassificationError struct {
	Message string
	Cause   error
}

func (e *ClassificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("classification error: %s", e.Message)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// FieldClassifier detects which taxonomy fields a page evidences. It wraps
// the model behind a narrow, schema-checked interface.
type FieldClassifier struct {
	client  Client
	tier    ModelTier
	Verbose bool
}

// NewFieldClassifier creates a classifier backed by the default model config.
func NewFieldClassifier(ctx context.Context, apiKey string) (*FieldClassifier, error) {
	if apiKey == "" {
		return nil, &ClassificationError{Message: "API key is required"}
	}
	client, err := NewClient(ctx, DefaultConfig(), apiKey)
	if err != nil {
		return nil, &ClassificationError{Message: "failed to create LLM client", Cause: err}
	}
	return &FieldClassifier{client: client, tier: TierLite}, nil
}

// NewFieldClassifierWithClient creates a classifier over an existing client.
func NewFieldClassifierWithClient(client Client) *FieldClassifier {
	return &FieldClassifier{client: client, tier: TierLite}
}

// Close releases the underlying client.
func (fc *FieldClassifier) Close() error {
	if fc.client != nil {
		return fc.client.Close()
	}
	return nil
}

// ClassifyFields submits page text to the model and returns the taxonomy
// fields it evidences plus a short content summary. Transport failures return
// a ClassificationError; malformed or ambiguous model output returns an empty
// result with no error.
func (fc *FieldClassifier) ClassifyFields(ctx context.Context, pageText string) ([]taxonomy.Field, string, error) {
	pageText = strings.TrimSpace(pageText)
	if pageText == "" {
		return nil, "", nil
	}
	if len(pageText) > maxClassifyInput {
		pageText = pageText[:maxClassifyInput]
	}

	prompt := buildClassificationPrompt(pageText)

	raw, err := fc.client.GenerateJSON(ctx, prompt, fc.tier)
	if err != nil {
		return nil, "", &ClassificationError{Message: "failed to generate classification", Cause: err}
	}

	fields, summary := parseClassification(raw, fc.Verbose)
	return fields, summary, nil
}

// buildClassificationPrompt constructs the field-detection prompt.
func buildClassificationPrompt(pageText string) string {
	names := make([]string, 0, taxonomy.Size())
	for _, f := range taxonomy.Fields() {
		names = append(names, string(f))
	}

	template := prompts.MustGet("audit.json", "classify-fields")
	return prompts.Format(template, map[string]string{
		"Fields":  strings.Join(names, ", "),
		"Content": pageText,
	})
}

// parseClassification validates and decodes the model output. Responses that
// fail schema validation yield an empty result.
func parseClassification(raw string, verbose bool) ([]taxonomy.Field, string) {
	raw = CleanJSONBlock(raw)

	if err := schemas.ValidateJSONString(classificationSchema, raw); err != nil {
		if verbose {
			log.Printf("[CLASSIFY] Discarding response failing schema validation: %v", err)
		}
		return nil, ""
	}

	var decoded struct {
		FieldsFound    []string `json:"fields_found"`
		ContentSummary string   `json:"content_summary"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		// Schema validation passed but decode failed; treat as empty output.
		return nil, ""
	}

	var fields []taxonomy.Field
	seen := make(map[taxonomy.Field]bool)
	for _, name := range decoded.FieldsFound {
		f := taxonomy.Field(strings.TrimSpace(strings.ToLower(name)))
		if taxonomy.Valid(f) && !seen[f] {
			fields = append(fields, f)
			seen[f] = true
		}
	}

	summary := strings.TrimSpace(decoded.ContentSummary)
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}

	return fields, summary
}
