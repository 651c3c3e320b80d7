package extract

import (
	"context"
	"testing"

	"compliance_summarizer/pkg/core/metrics"
)

// cannedGenerator returns a fixed response and counts calls.
type cannedGenerator struct {
	response string
	calls    int
}

func (g *cannedGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64, modelOverride string) string {
	g.calls++
	return g.response
}

// fullResponse builds a JSON object covering the whole vocabulary with null
// everywhere except the given overrides.
func fullResponse(overrides map[string]string) string {
	out := "{"
	first := true
	for _, k := range metrics.All() {
		if !first {
			out += ","
		}
		first = false
		v, ok := overrides[string(k)]
		if !ok {
			v = "null"
		}
		out += `"` + string(k) + `":` + v
	}
	return out + "}"
}

func TestStrictTierWins(t *testing.T) {
	gen := &cannedGenerator{response: fullResponse(map[string]string{
		"capital": "500000",
	})}
	e := New(gen, 1)

	got := e.ExtractChunk(context.Background(), "Total Equity (Capital): 900,000")
	v, ok := got[metrics.Capital]
	if !ok || v.Num == nil {
		t.Fatal("capital not resolved")
	}
	// The strict tier answered 500000; the regex tier must not overwrite it
	// with the 900,000 visible in the text.
	if *v.Num != 500000 {
		t.Errorf("capital = %f, want 500000", *v.Num)
	}
	if v.Tier != TierStrict {
		t.Errorf("capital tier = %s, want %s", v.Tier, TierStrict)
	}
}

func TestStrictResponseMissingKeyDiscarded(t *testing.T) {
	// A response without the full vocabulary is discarded wholesale; the
	// regex tier then resolves from the text instead.
	gen := &cannedGenerator{response: `{"capital": 500000}`}
	e := New(gen, 1)

	got := e.ExtractChunk(context.Background(), "Total Equity (Capital): 900,000")
	v, ok := got[metrics.Capital]
	if !ok || v.Num == nil {
		t.Fatal("capital not resolved by fallback tier")
	}
	if *v.Num != 900000 {
		t.Errorf("capital = %f, want 900000 from regex tier", *v.Num)
	}
	if v.Tier != TierRegex {
		t.Errorf("capital tier = %s, want %s", v.Tier, TierRegex)
	}
}

func TestLLMFailureDegradesToHeuristics(t *testing.T) {
	gen := &cannedGenerator{response: ""}
	e := New(gen, 1)

	chunk := "Total Liabilities 400,000\nSolvency ratio: 25%"
	got := e.ExtractChunk(context.Background(), chunk)

	if v := got[metrics.Liabilities]; v.Num == nil || *v.Num != 400000 {
		t.Errorf("liabilities not resolved by regex tier: %+v", v)
	}
	if v := got[metrics.SolvencyRatio]; v.Num == nil || *v.Num != 25 {
		t.Errorf("solvency not resolved by regex tier: %+v", v)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestNilGeneratorSkipsStrictTier(t *testing.T) {
	e := New(nil, 1)
	got := e.ExtractChunk(context.Background(), "Gross Written Premiums: 2,100,000")
	if v := got[metrics.GWP]; v.Num == nil || *v.Num != 2100000 {
		t.Errorf("gwp = %+v, want 2100000", v)
	}
}

func TestDocumentScaleAppliedOnce(t *testing.T) {
	// Document declared in thousands. A bare token is scaled; a token with
	// its own suffix is not scaled again.
	e := New(nil, 1000)
	chunk := "Total Liabilities 400,000\n\nTotal investment income 3.5 million"
	got := e.ExtractChunk(context.Background(), chunk)

	if v := got[metrics.Liabilities]; v.Num == nil || *v.Num != 400000000 {
		t.Errorf("liabilities = %+v, want 400,000 x 1000", v)
	}
	if v := got[metrics.InvestmentIncomeTotal]; v.Num == nil || *v.Num != 3.5e6 {
		t.Errorf("investment income = %+v, want 3.5e6 unscaled by document units", v)
	}
}

func TestScaleNeverAppliesToRatioOrStatus(t *testing.T) {
	e := New(nil, 1000)
	chunk := "Solvency ratio: 25%\nThe auditors issued an unqualified opinion."
	got := e.ExtractChunk(context.Background(), chunk)

	if v := got[metrics.SolvencyRatio]; v.Num == nil || *v.Num != 25 {
		t.Errorf("solvency = %+v, want 25 regardless of document units", v)
	}
	if v := got[metrics.AuditorsUnqualified]; v.Flag == nil || !*v.Flag {
		t.Errorf("auditor opinion = %+v, want true", v)
	}
}

func TestProximityResolvesTabularLayout(t *testing.T) {
	// Label and value on separate lines with text between them, as tabular
	// PDFs extract. The label-anchored regex cannot bridge the gap; the
	// proximity scan can.
	e := New(nil, 1)
	chunk := "Gross written premium\n(see notes)\n2,100,000\n\nnarrative text"
	got := e.ExtractChunk(context.Background(), chunk)

	v, ok := got[metrics.GWP]
	if !ok || v.Num == nil {
		t.Fatal("gwp not resolved from tabular layout")
	}
	if *v.Num != 2100000 {
		t.Errorf("gwp = %f, want 2100000", *v.Num)
	}
	if v.Tier != TierProximity {
		t.Errorf("gwp tier = %s, want %s", v.Tier, TierProximity)
	}
}

func TestProximityUnitMarkerOnValueLineScalesOnce(t *testing.T) {
	// The '000 marker on the value line declares the statement unit; it is
	// not part of the figure. 400,000 x 1000 = 4e8, never x 1000 again.
	e := New(nil, 1000)
	chunk := "Total liabilities\n(see note)\nKShs 400,000 '000"
	got := e.ExtractChunk(context.Background(), chunk)

	v, ok := got[metrics.Liabilities]
	if !ok || v.Num == nil {
		t.Fatal("liabilities not resolved")
	}
	if *v.Num != 4e8 {
		t.Errorf("liabilities = %g, want 4e8 (document scale applied once)", *v.Num)
	}
	if v.Tier != TierProximity {
		t.Errorf("liabilities tier = %s, want %s", v.Tier, TierProximity)
	}
}

func TestProximityTwoColumnTakesFirstFigure(t *testing.T) {
	// Comparative layouts put current and prior year side by side; the
	// columns must stay separate tokens, current year first.
	e := New(nil, 1)
	chunk := "Net claims paid\n(current and prior year)\n850,000 920,000"
	got := e.ExtractChunk(context.Background(), chunk)

	v, ok := got[metrics.NetClaimsPaid]
	if !ok || v.Num == nil {
		t.Fatal("net claims paid not resolved")
	}
	if *v.Num != 850000 {
		t.Errorf("net claims paid = %g, want 850000 (first column)", *v.Num)
	}
}

func TestProximitySolvencyNeedsPercent(t *testing.T) {
	e := New(nil, 1)
	// A bare 25 near the label is ambiguous and must stay unresolved.
	got := e.ExtractChunk(context.Background(), "Solvency ratio\n25\n")
	if _, ok := got[metrics.SolvencyRatio]; ok {
		t.Error("solvency resolved from a bare number without % marker")
	}
}

func TestStrictNullLeavesKeyUnresolved(t *testing.T) {
	gen := &cannedGenerator{response: fullResponse(map[string]string{
		"capital": "500000",
	})}
	e := New(gen, 1)
	got := e.ExtractChunk(context.Background(), "no labels here")
	if _, ok := got[metrics.Liabilities]; ok {
		t.Error("null from the model should leave liabilities unresolved")
	}
	if _, ok := got[metrics.AuditorsUnqualified]; ok {
		t.Error("null from the model should leave the auditor flag unresolved")
	}
}

func TestStrictAcceptsAuditorBool(t *testing.T) {
	gen := &cannedGenerator{response: fullResponse(map[string]string{
		"auditors_unqualified_opinion": "true",
	})}
	e := New(gen, 1)
	got := e.ExtractChunk(context.Background(), "whatever")
	v, ok := got[metrics.AuditorsUnqualified]
	if !ok || v.Flag == nil || !*v.Flag {
		t.Errorf("auditor flag = %+v, want true via strict tier", v)
	}
}

func TestStrictBareNumberTreatedAsStatementUnits(t *testing.T) {
	gen := &cannedGenerator{response: fullResponse(map[string]string{
		"capital": "500000",
	})}
	e := New(gen, 1000)
	got := e.ExtractChunk(context.Background(), "whatever")
	if v := got[metrics.Capital]; v.Num == nil || *v.Num != 5e8 {
		t.Errorf("capital = %+v, want 500000 x 1000", v)
	}
}
