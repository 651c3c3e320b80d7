package extract

import (
	"context"
	"regexp"
	"strings"

	"compliance_summarizer/pkg/core/metrics"
	"compliance_summarizer/pkg/core/numeric"
)

// ProximityStrategy is the last-resort tier for tabular layouts where the
// label and its figure end up on different lines after text extraction. It
// finds a line containing a known label, then scans nearby lines for a
// parseable value.
type ProximityStrategy struct{}

func (ProximityStrategy) Name() string { return string(TierProximity) }

// lineOffsets is the search order relative to the label line: the label's own
// line first, then below (values usually follow labels), then above.
var lineOffsets = []int{0, 1, 2, -1, -2}

// numTokenRe must not absorb whitespace or apostrophes: a greedy class would
// swallow a trailing '000 unit marker (scaling the value twice) or weld
// adjacent column figures together.
var (
	numTokenRe = regexp.MustCompile(`\(?-?[0-9][0-9,]*(?:\.[0-9]+)?\)?(?:\s*(?:millions?|billions?|thousands?|bn|mn|[kmb]))?\b`)
	pctTokenRe = regexp.MustCompile(`-?[0-9][0-9,]*(?:\.[0-9]+)?\s*%`)
)

func (ProximityStrategy) Attempt(_ context.Context, chunk string, unresolved []metrics.Key, scale float64) map[metrics.Key]Value {
	lines := strings.Split(chunk, "\n")
	out := make(map[metrics.Key]Value)
	for _, k := range unresolved {
		rule, ok := metrics.RuleFor(k)
		if !ok {
			continue
		}
		if v, ok := searchNearLabel(k, rule, lines, scale); ok {
			out[k] = v
		}
	}
	return out
}

func searchNearLabel(k metrics.Key, rule metrics.LabelRule, lines []string, scale float64) (Value, bool) {
	for i, line := range lines {
		if !containsLabel(line, rule.Labels) {
			continue
		}
		for _, off := range lineOffsets {
			j := i + off
			if j < 0 || j >= len(lines) {
				continue
			}
			if v, ok := valueOnLine(k, rule, lines[j], scale); ok {
				return v, true
			}
		}
	}
	return Value{}, false
}

func containsLabel(line string, labels []string) bool {
	lower := strings.ToLower(line)
	for _, l := range labels {
		if strings.Contains(lower, l) {
			return true
		}
	}
	return false
}

func valueOnLine(k metrics.Key, rule metrics.LabelRule, line string, scale float64) (Value, bool) {
	switch metrics.KindOf(k) {
	case metrics.KindStatus:
		for _, re := range rule.Patterns {
			if re.MatchString(line) {
				t := true
				return Value{Flag: &t, Tier: TierProximity}, true
			}
		}
		return Value{}, false

	case metrics.KindRatio:
		// The % marker is mandatory; a bare number near the label could be
		// anything.
		if m := pctTokenRe.FindString(line); m != "" {
			if p := numeric.ParsePercent(m); p != nil {
				return Value{Num: p, Tier: TierProximity}, true
			}
		}
		return Value{}, false

	default: // KindCurrency
		for _, tok := range numTokenRe.FindAllString(line, -1) {
			amt := numeric.ParseAmount(tok)
			if amt == nil {
				continue
			}
			v := amt.Value
			if !amt.ExplicitScale {
				v *= scale
			}
			return Value{Num: &v, Tier: TierProximity}, true
		}
		return Value{}, false
	}
}
