package prompt

// Built-in template IDs.
const (
	ExtractChunkMetrics = "extract.chunk_metrics"
	SynthesizeDocument  = "synthesize.document"
)

const extractSystem = `You are a data extraction specialist for insurance regulatory filings.
Extract ONLY values explicitly stated in the text. Do not calculate, validate, or derive anything.`

const extractUser = `Extract the following financial metrics from the statement excerpt below.

Respond with a single JSON object containing EXACTLY these keys (use null for
any metric not explicitly stated in the excerpt):
{{range .Keys}}  "{{.}}": <number, boolean, or null>
{{end}}
Rules:
- Monetary values: plain numbers in the statement's own units, no currency symbols.
- "solvency_ratio" is a percentage; include it only if the text states it with a % sign.
- "auditors_unqualified_opinion" is true only if the text states an unqualified or clean opinion; otherwise null.
- Output ONLY the JSON object, no prose, no markdown fences.

Statement excerpt:
{{.Chunk}}`

const synthesizeSystem = `You are an expert regulator-level summarizer of insurer financial statements.
Combine chunk-level extraction digests into one concise assessment for a regulator.`

const synthesizeUser = `Here are per-chunk extraction digests (JSON objects) from one insurer filing{{if .Title}} titled "{{.Title}}"{{end}}.

Produce a single JSON object with keys:
  "narrative" (string, markdown allowed),
  "recommendations" (list of strings),
  "confidence" (number 0-100).

Digests:
{{.Digests}}`

func registerBuiltins(r *Registry) {
	// Built-ins are authored here; a parse failure is a programming error.
	if err := r.Register(ExtractChunkMetrics, extractSystem, extractUser); err != nil {
		panic(err)
	}
	if err := r.Register(SynthesizeDocument, synthesizeSystem, synthesizeUser); err != nil {
		panic(err)
	}
}
