// Package metrics defines the canonical vocabulary of financial metrics the
// summarization pipeline extracts from insurer statements. The key set is
// closed: every pipeline output contains exactly these keys, each resolved to
// a typed value or null.
package metrics

// Key identifies one canonical metric field.
type Key string

const (
	Capital                 Key = "capital"
	Liabilities             Key = "liabilities"
	SolvencyRatio           Key = "solvency_ratio"
	GWP                     Key = "gwp"
	NetClaimsPaid           Key = "net_claims_paid"
	InvestmentIncomeTotal   Key = "investment_income_total"
	CommissionExpenseTotal  Key = "commission_expense_total"
	OperatingExpensesTotal  Key = "operating_expenses_total"
	ProfitBeforeTax         Key = "profit_before_tax"
	ContingencyReserve      Key = "contingency_reserve_statutory"
	IBNRReserveGross        Key = "ibnr_reserve_gross"
	RelatedPartyNetExposure Key = "related_party_net_exposure"
	AuditorsUnqualified     Key = "auditors_unqualified_opinion"
)

// Kind is the declared value type of a metric.
type Kind int

const (
	// KindCurrency values are monetary amounts and participate in
	// document-level unit scaling.
	KindCurrency Kind = iota
	// KindRatio values are percentages. Never unit-scaled.
	KindRatio
	// KindStatus values are boolean opinions/statuses. Never unit-scaled.
	KindStatus
)

// allKeys is the canonical ordering used for output maps and missing_items.
var allKeys = []Key{
	Capital,
	Liabilities,
	SolvencyRatio,
	GWP,
	NetClaimsPaid,
	InvestmentIncomeTotal,
	CommissionExpenseTotal,
	OperatingExpensesTotal,
	ProfitBeforeTax,
	ContingencyReserve,
	IBNRReserveGross,
	RelatedPartyNetExposure,
	AuditorsUnqualified,
}

var kinds = map[Key]Kind{
	Capital:                 KindCurrency,
	Liabilities:             KindCurrency,
	SolvencyRatio:           KindRatio,
	GWP:                     KindCurrency,
	NetClaimsPaid:           KindCurrency,
	InvestmentIncomeTotal:   KindCurrency,
	CommissionExpenseTotal:  KindCurrency,
	OperatingExpensesTotal:  KindCurrency,
	ProfitBeforeTax:         KindCurrency,
	ContingencyReserve:      KindCurrency,
	IBNRReserveGross:        KindCurrency,
	RelatedPartyNetExposure: KindCurrency,
	AuditorsUnqualified:     KindStatus,
}

// All returns the canonical key ordering. The returned slice is a copy.
func All() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// KindOf returns the declared value kind for a key.
func KindOf(k Key) Kind {
	return kinds[k]
}

// IsCanonical reports whether k belongs to the closed vocabulary.
func IsCanonical(k Key) bool {
	_, ok := kinds[k]
	return ok
}
