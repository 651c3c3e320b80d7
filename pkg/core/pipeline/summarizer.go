// Package pipeline wires the stages end to end: PDF text extraction,
// chunking, tiered metric extraction across a bounded worker pool,
// document-order aggregation and the narrative synthesis pass.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"compliance_summarizer/pkg/core/aggregate"
	"compliance_summarizer/pkg/core/chunk"
	"compliance_summarizer/pkg/core/config"
	"compliance_summarizer/pkg/core/extract"
	"compliance_summarizer/pkg/core/llm"
	"compliance_summarizer/pkg/core/metrics"
	"compliance_summarizer/pkg/core/numeric"
	"compliance_summarizer/pkg/core/pdftext"
	"compliance_summarizer/pkg/core/prompt"
	"compliance_summarizer/pkg/core/utils"
	"compliance_summarizer/pkg/models"
)

// maxWorkers caps the chunk worker pool regardless of configuration; the
// provider's rate limits make wider pools counterproductive.
const maxWorkers = 3

const synthesisMaxTokens = 2048

// Summarizer runs the full document pipeline. Construct with NewSummarizer;
// the setters exist for injecting fakes in tests.
type Summarizer struct {
	cfg       config.Config
	client    *llm.Client
	gen       extract.Generator
	providers []llm.Provider
}

// NewSummarizer builds a summarizer from configuration. The strict tier and
// the synthesis pass share one REST client; synthesis additionally tries the
// SDK route first when an API key is present.
func NewSummarizer(cfg config.Config) *Summarizer {
	client := llm.NewClient(llm.Config{
		APIKey:            cfg.APIKey,
		CredentialsFile:   cfg.CredentialsFile,
		Model:             cfg.Model,
		Timeout:           cfg.Timeout(),
		Retries:           cfg.Retries,
		PriorityModels:    cfg.PriorityModels,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, nil)

	var providers []llm.Provider
	if cfg.APIKey != "" {
		providers = append(providers, &llm.SDKProvider{APIKey: cfg.APIKey, Model: cfg.Model})
	}
	providers = append(providers, &llm.RESTProvider{Client: client, MaxTokens: synthesisMaxTokens})

	return &Summarizer{
		cfg:       cfg,
		client:    client,
		gen:       client,
		providers: providers,
	}
}

// SetGenerator replaces the strict-tier generator (e.g., with a canned fake).
func (s *Summarizer) SetGenerator(gen extract.Generator) {
	s.gen = gen
}

// SetProviders replaces the synthesis provider chain.
func (s *Summarizer) SetProviders(providers ...llm.Provider) {
	s.providers = providers
}

// ValidateCredentials probes the model catalog and logs the outcome.
func (s *Summarizer) ValidateCredentials(ctx context.Context) {
	s.client.ValidateCredentials(ctx)
}

// SummarizeDocument extracts text from PDF bytes and summarizes it.
func (s *Summarizer) SummarizeDocument(ctx context.Context, pdfBytes []byte, title string) (*models.FinancialSummary, error) {
	res := pdftext.Analyze(pdfBytes)
	if res.ScannedLikely {
		log.Printf("pipeline: document %q yields almost no text per page; likely a scanned image without OCR", title)
	}
	return s.SummarizeText(ctx, res.Text, title)
}

// SummarizeText runs the pipeline over already-extracted text. Empty text
// short-circuits to an all-null summary without touching the model.
func (s *Summarizer) SummarizeText(ctx context.Context, text string, title string) (*models.FinancialSummary, error) {
	runID := uuid.NewString()[:8]
	start := time.Now()
	fmt.Printf("[%s] Summarizing %q...\n", runID, title)

	if strings.TrimSpace(text) == "" {
		fmt.Printf("[%s] No extractable text; returning empty summary.\n", runID)
		return emptySummary(title), nil
	}

	scale, unitLabel := numeric.DetectUnitScale(text)
	if unitLabel != "" {
		fmt.Printf("[%s] Statement units declared in %s (x%.0f).\n", runID, unitLabel, scale)
	}

	chunks := chunk.Split(text, s.cfg.ChunkMaxChars)
	fmt.Printf("[%s] Processing %d chunks...\n", runID, len(chunks))

	extractor := extract.New(s.gen, scale)
	perChunk := s.extractAll(ctx, extractor, chunks)

	chunkMetrics := make([]aggregate.ChunkMetrics, len(perChunk))
	digests := make([]string, 0, len(perChunk))
	for i, values := range perChunk {
		chunkMetrics[i] = aggregate.ChunkMetrics{Index: i, Values: values}
		if d := digest(i, values); d != "" {
			digests = append(digests, d)
		}
	}

	outcome := aggregate.Merge(chunkMetrics)
	fmt.Printf("[%s] Resolved %d of %d metrics.\n", runID,
		len(metrics.All())-len(outcome.Missing), len(metrics.All()))

	summary := &models.FinancialSummary{
		DocumentTitle:     title,
		Metrics:           outcome.Metrics,
		MissingItems:      outcome.Missing,
		RawChunkSummaries: digests,
	}
	s.synthesize(ctx, summary, outcome, digests)

	fmt.Printf("[%s] Done in %v.\n", runID, time.Since(start))
	return summary, nil
}

// extractAll fans chunks out over a bounded worker pool and collects results
// indexed by chunk position, so aggregation sees document order no matter
// which worker finished first.
func (s *Summarizer) extractAll(ctx context.Context, extractor *extract.Extractor, chunks []string) []map[metrics.Key]extract.Value {
	workers := s.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	results := make([]map[metrics.Key]extract.Value, len(chunks))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = extractor.ExtractChunk(ctx, chunks[i])
			}
		}()
	}
	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// digest renders one chunk's resolved values as a compact JSON object for the
// synthesis prompt and the raw_chunk_summaries output.
func digest(index int, values map[metrics.Key]extract.Value) string {
	if len(values) == 0 {
		return ""
	}
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		switch {
		case v.Num != nil:
			fields[string(k)] = *v.Num
		case v.Flag != nil:
			fields[string(k)] = *v.Flag
		}
	}
	payload := map[string]interface{}{"chunk": index, "metrics": fields}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}

// synthesize fills narrative, recommendations and confidence via the provider
// chain, falling back to a deterministic narrative when every provider fails.
func (s *Summarizer) synthesize(ctx context.Context, summary *models.FinancialSummary, outcome aggregate.Outcome, digests []string) {
	if len(digests) > 0 && len(s.providers) > 0 {
		system, user, err := prompt.Get().Render(prompt.SynthesizeDocument, map[string]interface{}{
			"Digests": strings.Join(digests, "\n"),
			"Title":   summary.DocumentTitle,
		})
		if err != nil {
			log.Printf("pipeline: render synthesis prompt: %v", err)
		} else {
			for _, p := range s.providers {
				raw, err := p.Generate(ctx, system, user)
				if err != nil {
					log.Printf("pipeline: synthesis provider failed: %v", err)
					continue
				}
				if applySynthesis(summary, raw) {
					return
				}
			}
		}
	}
	summary.Narrative = fallbackNarrative(summary.DocumentTitle, outcome)
}

func applySynthesis(summary *models.FinancialSummary, raw string) bool {
	var parsed struct {
		Narrative       string   `json:"narrative"`
		Recommendations []string `json:"recommendations"`
		Confidence      *float64 `json:"confidence"`
	}
	if err := utils.SmartParse(utils.ExtractJSONObject(raw), &parsed); err != nil {
		log.Printf("pipeline: synthesis output not parseable: %v", err)
		return false
	}
	if strings.TrimSpace(parsed.Narrative) == "" {
		return false
	}
	narrative := utils.CleanMarkdown(parsed.Narrative)
	if !utils.ValidateMarkdown(narrative) {
		// Rejecting here sends the caller to the next provider or the
		// deterministic fallback.
		log.Printf("pipeline: synthesis narrative failed markdown validation, discarding")
		return false
	}
	summary.Narrative = narrative
	summary.Recommendations = parsed.Recommendations
	summary.Confidence = parsed.Confidence
	return true
}

// fallbackNarrative is the deterministic narrative used when no provider
// produced usable synthesis output: a plain listing of what was resolved.
func fallbackNarrative(title string, outcome aggregate.Outcome) string {
	var resolved []string
	for _, k := range metrics.All() {
		v := outcome.Metrics[k]
		if v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			resolved = append(resolved, fmt.Sprintf("%s: %.2f", k, t))
		case bool:
			resolved = append(resolved, fmt.Sprintf("%s: %t", k, t))
		}
	}
	sort.Strings(resolved)

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Summary of %s.\n\n", title)
	}
	if len(resolved) == 0 {
		b.WriteString("No financial metrics could be extracted from the document.")
		return b.String()
	}
	b.WriteString("Extracted metrics:\n")
	for _, line := range resolved {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	if len(outcome.Missing) > 0 {
		fmt.Fprintf(&b, "\nNot found in the document: %s.", strings.Join(outcome.Missing, ", "))
	}
	return b.String()
}

// emptySummary is the short-circuit result for documents with no extractable
// text: every metric null, and the missing list points at the document text
// itself rather than individual metrics.
func emptySummary(title string) *models.FinancialSummary {
	m := make(map[metrics.Key]interface{}, len(metrics.All()))
	for _, k := range metrics.All() {
		m[k] = nil
	}
	return &models.FinancialSummary{
		DocumentTitle: title,
		Narrative:     "No text could be extracted from the document. It may be a scanned image requiring OCR.",
		Metrics:       m,
		MissingItems:  []string{"document_text"},
	}
}
