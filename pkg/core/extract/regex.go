package extract

import (
	"context"

	"compliance_summarizer/pkg/core/metrics"
	"compliance_summarizer/pkg/core/numeric"
)

// RegexStrategy anchors on statement labels with the declarative pattern
// table and captures the adjacent numeric token. Purely local: one chunk,
// no network, no state.
type RegexStrategy struct{}

func (RegexStrategy) Name() string { return string(TierRegex) }

func (RegexStrategy) Attempt(_ context.Context, chunk string, unresolved []metrics.Key, scale float64) map[metrics.Key]Value {
	out := make(map[metrics.Key]Value)
	for _, k := range unresolved {
		rule, ok := metrics.RuleFor(k)
		if !ok {
			continue
		}
		if v, ok := matchRule(k, rule, chunk, scale); ok {
			out[k] = v
		}
	}
	return out
}

func matchRule(k metrics.Key, rule metrics.LabelRule, chunk string, scale float64) (Value, bool) {
	switch metrics.KindOf(k) {
	case metrics.KindStatus:
		// Presence patterns: a hit asserts the status, absence stays null.
		for _, re := range rule.Patterns {
			if re.MatchString(chunk) {
				t := true
				return Value{Flag: &t, Tier: TierRegex}, true
			}
		}
		return Value{}, false

	case metrics.KindRatio:
		for _, re := range rule.Patterns {
			m := re.FindStringSubmatch(chunk)
			if len(m) < 2 {
				continue
			}
			if p := numeric.ParsePercent(m[1]); p != nil {
				return Value{Num: p, Tier: TierRegex}, true
			}
		}
		return Value{}, false

	default: // KindCurrency
		for _, re := range rule.Patterns {
			m := re.FindStringSubmatch(chunk)
			if len(m) < 2 {
				continue
			}
			amt := numeric.ParseAmount(m[1])
			if amt == nil {
				continue
			}
			v := amt.Value
			if !amt.ExplicitScale {
				v *= scale
			}
			return Value{Num: &v, Tier: TierRegex}, true
		}
		return Value{}, false
	}
}
