package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Provider is the interface the synthesis pass talks to. Implementations may
// error; callers decide how to degrade.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// SDKProvider implements Provider over the official GenAI SDK. Used for the
// narrative synthesis pass, where the SDK's fixed shapes are fine; strict
// metric extraction goes through Client, which needs shape tolerance the SDK
// does not expose.
type SDKProvider struct {
	APIKey string
	Model  string
}

var _ Provider = (*SDKProvider)(nil)

func (p *SDKProvider) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("no API key configured for SDK provider")
	}
	model := p.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}

// RESTProvider adapts Client to the Provider interface so the synthesis pass
// can fall back to the resilient REST path when the SDK route fails.
type RESTProvider struct {
	Client    *Client
	MaxTokens int
}

var _ Provider = (*RESTProvider)(nil)

func (p *RESTProvider) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}
	out := p.Client.Generate(ctx, prompt, maxTokens, 0, "")
	if out == "" {
		return "", fmt.Errorf("generation produced no text")
	}
	return out, nil
}
