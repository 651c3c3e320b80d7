// Package models defines the serialized outputs of the summarization
// pipeline.
package models

import "compliance_summarizer/pkg/core/metrics"

// FinancialSummary is the document-level result returned to callers and
// emitted as JSON. Metrics always carries the full canonical vocabulary;
// unresolved keys are null and listed in MissingItems.
type FinancialSummary struct {
	DocumentTitle     string                      `json:"document_title"`
	Narrative         string                      `json:"narrative"`
	Metrics           map[metrics.Key]interface{} `json:"metrics"`
	Recommendations   []string                    `json:"recommendations"`
	MissingItems      []string                    `json:"missing_items"`
	Confidence        *float64                    `json:"confidence,omitempty"`
	RawChunkSummaries []string                    `json:"raw_chunk_summaries,omitempty"`
}
