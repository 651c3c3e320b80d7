// Package numeric parses human-formatted financial tokens into floats and
// infers document-level unit scaling from statement headers.
package numeric

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount is a parsed monetary token. ExplicitScale records whether the token
// itself carried a k/m/b style multiplier, in which case the document-level
// unit multiplier must not be applied again.
type Amount struct {
	Value         float64
	ExplicitScale bool
}

var suffixScales = []struct {
	suffix string
	mult   float64
}{
	{"billions", 1e9},
	{"billion", 1e9},
	{"millions", 1e6},
	{"million", 1e6},
	{"thousands", 1e3},
	{"thousand", 1e3},
	{"bn", 1e9},
	{"mn", 1e6},
	{"b", 1e9},
	{"m", 1e6},
	{"k", 1e3},
}

var currencyMarkers = []string{"kshs", "ksh", "kes", "usd", "ugx", "tzs", "$", "£", "€"}

// unitMarkerOnly matches tokens like '000 that declare a statement unit but
// carry no value of their own.
var unitMarkerOnly = regexp.MustCompile(`^'?0{3,}s?$`)

// ParseAmount parses a monetary token ("1,234.5 million", "(500)", "KShs 1,200")
// into an Amount. Parenthesized values are negative per accounting convention.
// Returns nil when no numeric content remains after cleaning.
func ParseAmount(token string) *Amount {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, cur := range currencyMarkers {
		s = strings.ReplaceAll(s, cur, "")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	if unitMarkerOnly.MatchString(s) {
		// A bare unit declaration, not a figure.
		return nil
	}

	mult := 1.0
	explicit := false
	for _, sc := range suffixScales {
		if strings.HasSuffix(s, sc.suffix) {
			rest := strings.TrimSpace(strings.TrimSuffix(s, sc.suffix))
			// Single-letter suffixes must directly follow a digit or a space
			// after digits; reject when nothing numeric precedes.
			if rest == "" {
				return nil
			}
			s = rest
			mult = sc.mult
			explicit = true
			break
		}
	}

	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = strings.TrimPrefix(s, "-")
	case strings.HasSuffix(s, "-"):
		neg = true
		s = strings.TrimSuffix(s, "-")
	case strings.HasPrefix(s, "+"):
		s = strings.TrimPrefix(s, "+")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if neg {
		val = -val
	}
	return &Amount{Value: val * mult, ExplicitScale: explicit}
}

// ParsePercent parses a ratio token. The explicit % marker is mandatory:
// without it the token is rejected rather than guessed at.
func ParsePercent(token string) *float64 {
	s := strings.TrimSpace(token)
	if !strings.Contains(s, "%") {
		return nil
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &val
}

// unitPatterns is scanned in priority order; first match wins. Grounded on
// the header declarations seen in regulatory filings ("KShs '000", "amounts
// in thousands") and general statement conventions.
var unitPatterns = []struct {
	re    *regexp.Regexp
	scale float64
	label string
}{
	{regexp.MustCompile(`(?i)in\s+thousands`), 1e3, "thousands"},
	{regexp.MustCompile(`(?i)(?:kshs?|kes)\.?\s*'?000`), 1e3, "thousands"},
	{regexp.MustCompile(`'000`), 1e3, "thousands"},
	{regexp.MustCompile(`(?i)\(\s*000s?\s*\)`), 1e3, "thousands"},
	{regexp.MustCompile(`(?i)in\s+millions`), 1e6, "millions"},
	{regexp.MustCompile(`(?i)\$\s*mm\b`), 1e6, "millions"},
	{regexp.MustCompile(`(?i)in\s+billions`), 1e9, "billions"},
}

const unitScanWindow = 5000

// DetectUnitScale scans the head of the document for a declared unit
// multiplier. Returns (1, "") when no declaration is found. The multiplier
// applies to currency-kind metrics only, and never on top of a token's own
// explicit scale suffix.
func DetectUnitScale(text string) (float64, string) {
	region := text
	if len(region) > unitScanWindow {
		region = region[:unitScanWindow]
	}
	for _, p := range unitPatterns {
		if p.re.MatchString(region) {
			return p.scale, p.label
		}
	}
	return 1.0, ""
}
