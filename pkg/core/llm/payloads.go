package llm

import "encoding/json"

// The provider has shipped several request and response shapes over time.
// Rather than branching conditionals, both directions are ordered lists:
// payload builders tried per attempt, response parsers tried per response.

type payloadBuilder func(prompt string, maxTokens int, temperature float64) map[string]interface{}

var payloadVariants = []payloadBuilder{
	// Current v1beta generateContent shape.
	func(prompt string, maxTokens int, temperature float64) map[string]interface{} {
		return map[string]interface{}{
			"contents": []map[string]interface{}{
				{
					"role":  "user",
					"parts": []map[string]string{{"text": prompt}},
				},
			},
			"generationConfig": map[string]interface{}{
				"maxOutputTokens": maxTokens,
				"temperature":     temperature,
			},
		}
	},
	// Legacy flat shape from earlier API revisions.
	func(prompt string, maxTokens int, temperature float64) map[string]interface{} {
		return map[string]interface{}{
			"prompt":          map[string]string{"text": prompt},
			"maxOutputTokens": maxTokens,
			"temperature":     temperature,
		}
	},
}

type responseParser func(raw []byte) string

var responseParsers = []responseParser{
	parseCandidateParts,
	parseCandidateOutput,
	parseTopLevelText,
}

// parseCandidateParts handles the current candidates/content/parts shape.
// A MAX_TOKENS finish with no text is a failed attempt, not partial output.
func parseCandidateParts(raw []byte) string {
	var body struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, cand := range body.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// parseCandidateOutput handles the older candidates[].output shape.
func parseCandidateOutput(raw []byte) string {
	var body struct {
		Candidates []struct {
			Output string `json:"output"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, cand := range body.Candidates {
		if cand.Output != "" {
			return cand.Output
		}
	}
	return ""
}

// parseTopLevelText handles responses that put the text at the top level.
func parseTopLevelText(raw []byte) string {
	var body struct {
		Text   string `json:"text"`
		Output string `json:"output"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Text != "" {
		return body.Text
	}
	return body.Output
}
