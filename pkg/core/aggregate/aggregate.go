// Package aggregate folds per-chunk extraction results into one
// document-level metric set. Merging is first-wins in document order, with
// solvency derived from capital and liabilities when no chunk stated it.
package aggregate

import (
	"math"
	"sort"

	"compliance_summarizer/pkg/core/extract"
	"compliance_summarizer/pkg/core/metrics"
)

// TierDerived marks values computed during aggregation rather than extracted
// from any chunk.
const TierDerived extract.Tier = "derived"

// MergePolicy names the conflict-resolution rule applied when several chunks
// resolve the same key.
type MergePolicy string

// PolicyDocumentOrder keeps the earliest chunk's value regardless of which
// tier produced it. Statements lead with their primary figures; later
// occurrences are usually restatements or comparatives.
const PolicyDocumentOrder MergePolicy = "document_order"

// ChunkMetrics is one chunk's extraction output, tagged with its position in
// the document.
type ChunkMetrics struct {
	Index  int
	Values map[metrics.Key]extract.Value
}

// Origin records where a merged value came from.
type Origin struct {
	Chunk int
	Tier  extract.Tier
}

// Outcome is the merged document-level result. Metrics always contains every
// canonical key; unresolved keys hold nil and are echoed in Missing in
// canonical order.
type Outcome struct {
	Metrics    map[metrics.Key]interface{}
	Missing    []string
	Provenance map[metrics.Key]Origin
}

// Merge folds chunk results into one Outcome under PolicyDocumentOrder.
// Chunks may arrive in any order; Index decides precedence.
func Merge(chunks []ChunkMetrics) Outcome {
	ordered := make([]ChunkMetrics, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	merged := make(map[metrics.Key]extract.Value)
	prov := make(map[metrics.Key]Origin)
	for _, cm := range ordered {
		for k, v := range cm.Values {
			if !metrics.IsCanonical(k) {
				continue
			}
			if _, seen := merged[k]; seen {
				continue
			}
			merged[k] = v
			prov[k] = Origin{Chunk: cm.Index, Tier: v.Tier}
		}
	}

	deriveSolvency(merged, prov)

	out := Outcome{
		Metrics: make(map[metrics.Key]interface{}, len(metrics.All())),
		// Empty, not nil: missing_items serializes as a list even when every
		// key resolved.
		Missing:    []string{},
		Provenance: prov,
	}
	for _, k := range metrics.All() {
		v, ok := merged[k]
		switch {
		case ok && v.Num != nil:
			out.Metrics[k] = *v.Num
		case ok && v.Flag != nil:
			out.Metrics[k] = *v.Flag
		default:
			out.Metrics[k] = nil
			out.Missing = append(out.Missing, string(k))
		}
	}
	return out
}

// deriveSolvency fills solvency_ratio as (capital - liabilities) / liabilities
// as a percentage, rounded to two decimals. Only when no chunk stated the
// ratio directly and liabilities is nonzero.
func deriveSolvency(merged map[metrics.Key]extract.Value, prov map[metrics.Key]Origin) {
	if _, ok := merged[metrics.SolvencyRatio]; ok {
		return
	}
	capital, okC := merged[metrics.Capital]
	liabilities, okL := merged[metrics.Liabilities]
	if !okC || !okL || capital.Num == nil || liabilities.Num == nil || *liabilities.Num == 0 {
		return
	}
	ratio := round2((*capital.Num - *liabilities.Num) / *liabilities.Num * 100)
	merged[metrics.SolvencyRatio] = extract.Value{Num: &ratio, Tier: TierDerived}
	prov[metrics.SolvencyRatio] = Origin{Chunk: -1, Tier: TierDerived}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
