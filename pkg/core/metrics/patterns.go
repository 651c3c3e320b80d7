package metrics

import "regexp"

// LabelRule declares how a metric is located in raw statement text.
// Patterns drive the labeled-regex tier: each regex anchors on the statement
// label and captures the adjacent numeric token. Labels drive the
// line-proximity tier: a case-insensitive substring hit marks a candidate
// line, and nearby lines are scanned for a parseable value.
type LabelRule struct {
	Patterns []*regexp.Regexp
	Labels   []string
}

// numTok captures a numeric token with optional parens, sign, thousands
// separators and a spelled or single-letter scale suffix. The document-level
// unit marker ('000 in the header) is deliberately outside the capture.
const numTok = `(\(?-?[0-9][0-9,]*(?:\.[0-9]+)?\)?(?:\s*(?:millions?|billions?|thousands?|[kmb])\b)?)`

// sep matches the label/value separator plus an optional currency marker.
const sep = `[\s:=]*(?:kshs\.?|ksh|kes|usd|\$)?\s*`

func labelled(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + label + sep + numTok)
}

// pctTok captures a percentage token. The explicit % marker is required so
// the ratio is never confused with a nearby monetary figure.
var pctTok = `(-?[0-9][0-9,]*(?:\.[0-9]+)?\s*%)`

func labelledPct(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + label + `[\s:=]*` + pctTok)
}

// rules is the declarative label table consumed by the regex and proximity
// tiers. Pattern order within a key is match priority.
var rules = map[Key]LabelRule{
	Capital: {
		Patterns: []*regexp.Regexp{
			labelled(`total\s+equity(?:\s*\(\s*capital\s*\))?`),
			labelled(`shareholders'?\s+(?:equity|funds)`),
			labelled(`total\s+capital`),
		},
		Labels: []string{"total equity", "shareholders equity", "shareholders' equity", "total capital"},
	},
	Liabilities: {
		Patterns: []*regexp.Regexp{
			labelled(`total\s+liabilities`),
		},
		Labels: []string{"total liabilities"},
	},
	SolvencyRatio: {
		Patterns: []*regexp.Regexp{
			labelledPct(`solvency\s+(?:margin\s+)?ratio`),
		},
		Labels: []string{"solvency ratio", "solvency margin ratio"},
	},
	GWP: {
		Patterns: []*regexp.Regexp{
			labelled(`gross\s+written\s+premiums?`),
			labelled(`\bgwp\b`),
		},
		Labels: []string{"gross written premium", "gwp"},
	},
	NetClaimsPaid: {
		Patterns: []*regexp.Regexp{
			labelled(`net\s+claims\s+(?:paid|incurred)`),
			labelled(`claims\s+paid`),
		},
		Labels: []string{"net claims paid", "claims paid", "net claims"},
	},
	InvestmentIncomeTotal: {
		Patterns: []*regexp.Regexp{
			labelled(`(?:total\s+)?investment\s+income`),
			labelled(`investment\s+returns`),
		},
		Labels: []string{"investment income", "investment returns"},
	},
	CommissionExpenseTotal: {
		Patterns: []*regexp.Regexp{
			labelled(`commission\s+expenses?`),
			labelled(`commissions\s+paid`),
		},
		Labels: []string{"commission expense", "commissions paid", "commissions"},
	},
	OperatingExpensesTotal: {
		Patterns: []*regexp.Regexp{
			labelled(`(?:total\s+)?operating\s+(?:expenses?|costs)`),
		},
		Labels: []string{"operating expenses", "operating costs"},
	},
	ProfitBeforeTax: {
		Patterns: []*regexp.Regexp{
			labelled(`profit\s+before\s+tax(?:ation)?`),
			labelled(`\bpbt\b`),
		},
		Labels: []string{"profit before tax", "pbt"},
	},
	ContingencyReserve: {
		Patterns: []*regexp.Regexp{
			labelled(`(?:statutory\s+)?contingency\s+reserves?`),
		},
		Labels: []string{"contingency reserve"},
	},
	IBNRReserveGross: {
		Patterns: []*regexp.Regexp{
			labelled(`(?:gross\s+)?ibnr(?:\s+reserves?)?`),
			labelled(`incurred\s+but\s+not\s+reported`),
		},
		Labels: []string{"ibnr", "incurred but not reported"},
	},
	RelatedPartyNetExposure: {
		Patterns: []*regexp.Regexp{
			labelled(`related\s+part(?:y|ies)\s+(?:net\s+)?(?:exposure|balances|transactions)`),
		},
		Labels: []string{"related party"},
	},
	AuditorsUnqualified: {
		// Status key: patterns assert presence of qualifying language, not a
		// numeric capture. Absence means null, never false.
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)unqualified\s+(?:audit\s+)?opinion`),
			regexp.MustCompile(`(?i)clean\s+(?:audit\s+)?opinion`),
		},
		Labels: []string{"auditor's opinion", "auditors' opinion", "audit opinion"},
	},
}

// RuleFor returns the label rule for a key.
func RuleFor(k Key) (LabelRule, bool) {
	r, ok := rules[k]
	return r, ok
}
