// Package extract resolves canonical metrics from a single text chunk by
// running an ordered cascade of strategies: strict LLM extraction first,
// then labeled-regex matching, then line-proximity heuristics. Each tier
// only sees the keys the tiers before it left unresolved, so a cheaper
// tier never overwrites a stronger one.
package extract

import (
	"context"

	"compliance_summarizer/pkg/core/metrics"
)

// Tier names the strategy that produced a value. Recorded in provenance so
// downstream consumers can weigh confidence.
type Tier string

const (
	TierStrict    Tier = "llm_strict"
	TierRegex     Tier = "regex_label"
	TierProximity Tier = "line_proximity"
)

// Value is one resolved metric. Exactly one of Num or Flag is set, matching
// the key's kind. Currency values are already scaled to base units.
type Value struct {
	Num  *float64
	Flag *bool
	Tier Tier
}

// Strategy attempts to resolve the given keys within one chunk. scale is the
// document-level unit multiplier for currency-kind keys; strategies apply it
// themselves because only they know whether a token carried its own suffix.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, chunk string, unresolved []metrics.Key, scale float64) map[metrics.Key]Value
}

// Generator produces model text for a prompt, returning "" on failure. The
// LLM client satisfies this; tests substitute a canned implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64, modelOverride string) string
}

// Extractor runs the tier cascade over chunks of one document.
type Extractor struct {
	strategies []Strategy
	scale      float64
}

// New builds the standard three-tier extractor. A nil generator skips the
// strict tier entirely, leaving the heuristic tiers to carry the document.
func New(gen Generator, scale float64) *Extractor {
	if scale <= 0 {
		scale = 1
	}
	var strategies []Strategy
	if gen != nil {
		strategies = append(strategies, NewStrictStrategy(gen))
	}
	strategies = append(strategies, RegexStrategy{}, ProximityStrategy{})
	return &Extractor{strategies: strategies, scale: scale}
}

// NewWithStrategies builds an extractor over an explicit cascade, in order.
func NewWithStrategies(scale float64, strategies ...Strategy) *Extractor {
	if scale <= 0 {
		scale = 1
	}
	return &Extractor{strategies: strategies, scale: scale}
}

// ExtractChunk resolves as many canonical keys as the cascade can from one
// chunk. Keys absent from the result are unresolved for this chunk; the
// aggregation layer may still see them in a later chunk.
func (e *Extractor) ExtractChunk(ctx context.Context, chunk string) map[metrics.Key]Value {
	resolved := make(map[metrics.Key]Value)
	unresolved := metrics.All()

	for _, strat := range e.strategies {
		if len(unresolved) == 0 {
			break
		}
		found := strat.Attempt(ctx, chunk, unresolved, e.scale)
		if len(found) == 0 {
			continue
		}
		var remaining []metrics.Key
		for _, k := range unresolved {
			if v, ok := found[k]; ok {
				resolved[k] = v
				continue
			}
			remaining = append(remaining, k)
		}
		unresolved = remaining
	}
	return resolved
}
