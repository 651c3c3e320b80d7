package extract

import (
	"context"
	"log"
	"strings"

	"compliance_summarizer/pkg/core/metrics"
	"compliance_summarizer/pkg/core/numeric"
	"compliance_summarizer/pkg/core/prompt"
	"compliance_summarizer/pkg/core/utils"
)

const (
	strictMaxTokens   = 1024
	strictTemperature = 0.0
)

// StrictStrategy asks the model for a JSON object covering the full canonical
// vocabulary and accepts the answer only when every key is present. Anything
// less, or any parse failure, resolves nothing; the cheaper tiers take over.
type StrictStrategy struct {
	gen Generator
}

// NewStrictStrategy wraps a generator in the strict-JSON tier.
func NewStrictStrategy(gen Generator) *StrictStrategy {
	return &StrictStrategy{gen: gen}
}

func (s *StrictStrategy) Name() string { return string(TierStrict) }

func (s *StrictStrategy) Attempt(ctx context.Context, chunk string, unresolved []metrics.Key, scale float64) map[metrics.Key]Value {
	system, user, err := prompt.Get().Render(prompt.ExtractChunkMetrics, map[string]interface{}{
		"Keys":  metrics.All(),
		"Chunk": chunk,
	})
	if err != nil {
		log.Printf("extract: render extraction prompt: %v", err)
		return nil
	}

	raw := s.gen.Generate(ctx, system+"\n\n"+user, strictMaxTokens, strictTemperature, "")
	if raw == "" {
		return nil
	}

	var parsed map[string]interface{}
	if err := utils.SmartParse(utils.ExtractJSONObject(raw), &parsed); err != nil {
		log.Printf("extract: model response is not parseable JSON: %v", err)
		return nil
	}
	for _, k := range metrics.All() {
		if _, ok := parsed[string(k)]; !ok {
			log.Printf("extract: model response missing key %q, discarding", k)
			return nil
		}
	}

	out := make(map[metrics.Key]Value)
	for _, k := range unresolved {
		v, ok := coerce(k, parsed[string(k)], scale)
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// coerce converts one JSON field to a typed Value according to the key's
// kind. JSON null (and any unusable type) means unresolved, never zero.
// Bare model numbers are taken as statement units, so the document scale
// applies to currency keys; a string token that carries its own suffix is
// scaled by the token alone.
func coerce(k metrics.Key, raw interface{}, scale float64) (Value, bool) {
	switch metrics.KindOf(k) {
	case metrics.KindStatus:
		if b, ok := raw.(bool); ok && b {
			return Value{Flag: &b, Tier: TierStrict}, true
		}
		return Value{}, false

	case metrics.KindRatio:
		switch t := raw.(type) {
		case float64:
			v := t
			return Value{Num: &v, Tier: TierStrict}, true
		case string:
			if p := numeric.ParsePercent(t); p != nil {
				return Value{Num: p, Tier: TierStrict}, true
			}
		}
		return Value{}, false

	default: // KindCurrency
		switch t := raw.(type) {
		case float64:
			v := t * scale
			return Value{Num: &v, Tier: TierStrict}, true
		case string:
			if strings.TrimSpace(t) == "" {
				return Value{}, false
			}
			amt := numeric.ParseAmount(t)
			if amt == nil {
				return Value{}, false
			}
			v := amt.Value
			if !amt.ExplicitScale {
				v *= scale
			}
			return Value{Num: &v, Tier: TierStrict}, true
		}
		return Value{}, false
	}
}
