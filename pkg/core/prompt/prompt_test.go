package prompt

import (
	"strings"
	"testing"

	"compliance_summarizer/pkg/core/metrics"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := Get()
	for _, id := range []string{ExtractChunkMetrics, SynthesizeDocument} {
		if _, _, err := r.Render(id, map[string]interface{}{}); err != nil {
			t.Errorf("builtin %q not renderable: %v", id, err)
		}
	}
}

func TestRenderExtractionPrompt(t *testing.T) {
	system, user, err := Get().Render(ExtractChunkMetrics, map[string]interface{}{
		"Keys":  metrics.All(),
		"Chunk": "Total Equity 500,000",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if system == "" {
		t.Error("extraction prompt should carry a system prompt")
	}
	for _, k := range metrics.All() {
		if !strings.Contains(user, string(k)) {
			t.Errorf("user prompt missing key %q", k)
		}
	}
	if !strings.Contains(user, "Total Equity 500,000") {
		t.Error("user prompt missing the chunk text")
	}
}

func TestRenderSynthesisPromptIncludesTitle(t *testing.T) {
	_, user, err := Get().Render(SynthesizeDocument, map[string]interface{}{
		"Digests": `{"chunk":0,"metrics":{}}`,
		"Title":   "Annual Report 2024",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(user, "Annual Report 2024") {
		t.Error("user prompt missing document title")
	}
	if !strings.Contains(user, `{"chunk":0,"metrics":{}}`) {
		t.Error("user prompt missing digests")
	}
}

func TestRenderUnknownID(t *testing.T) {
	if _, _, err := Get().Render("nope", nil); err == nil {
		t.Error("Render of unregistered id should error")
	}
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	if err := Get().Register("", "sys", "user"); err == nil {
		t.Error("empty id should be rejected")
	}
}
