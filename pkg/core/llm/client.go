// Package llm is the transport layer to the Gemini generative-text API.
// The provider's payload and response shapes have changed across revisions,
// so the client tries multiple request shapes and response parsers per call
// and retries across candidate model-name forms. Its only observable failure
// mode is an empty string plus log output; no error ever escapes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL points at the v1beta models collection; generation and
	// listing both hang off it.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultModel is used when neither config nor discovery yields a model.
	DefaultModel = "gemini-2.5-flash"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// Config holds the client's tunables. Zero values fall back to defaults.
type Config struct {
	APIKey            string
	CredentialsFile   string // service-account JSON; bearer token preferred over APIKey
	Model             string // overrides discovery when set
	BaseURL           string
	Timeout           time.Duration
	Retries           int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	PriorityModels    []string
	RequestsPerSecond float64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 5 * time.Second
	}
	if len(c.PriorityModels) == 0 {
		c.PriorityModels = []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"}
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	return c
}

// Client is a resilient Gemini REST client. Safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   *ModelCache
}

// NewClient builds a client around cfg. A nil cache gets a fresh one;
// injecting a preseeded cache avoids network discovery in tests.
func NewClient(cfg Config, cache *ModelCache) *Client {
	cfg = cfg.withDefaults()
	if cache == nil {
		cache = NewModelCache()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:   cache,
	}
}

// Generate sends prompt to the generation endpoint and returns the model's
// text, or "" after exhausting every candidate model form, retry, payload
// variant and response parser. Callers treat "" as "strict extraction
// unavailable" and fall back to heuristics.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64, modelOverride string) string {
	model := modelOverride
	if model == "" {
		model = c.cfg.Model
	}
	if model == "" {
		model = c.resolveModel(ctx)
	}
	if model == "" {
		model = DefaultModel
	}

	candidates := []string{model}
	if !strings.HasPrefix(model, "models/") {
		candidates = append(candidates, "models/"+model)
	}

	var tried []string
	for _, cand := range candidates {
		tried = append(tried, cand)
		for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
			out, fatal := c.invokeOnce(ctx, cand, prompt, maxTokens, temperature)
			if out != "" {
				return out
			}
			if fatal {
				return ""
			}
			c.backoff(ctx, attempt)
		}
	}

	// Best effort: exact ids advertised by the catalog.
	if exact, err := c.ListModels(ctx, true); err == nil {
		for _, cand := range exact {
			tried = append(tried, cand)
			out, fatal := c.invokeOnce(ctx, cand, prompt, maxTokens, temperature)
			if out != "" {
				log.Printf("llm: succeeded with exact model id %s", cand)
				return out
			}
			if fatal {
				return ""
			}
		}
	}

	log.Printf("llm: all generation attempts failed (candidates tried: %v)", tried)
	return ""
}

// invokeOnce runs one attempt against one model candidate, cycling through
// every payload variant and response parser. fatal is true only when the
// situation cannot improve with retries (no credentials, context cancelled).
func (c *Client) invokeOnce(ctx context.Context, model, prompt string, maxTokens int, temperature float64) (text string, fatal bool) {
	for _, build := range payloadVariants {
		body, err := json.Marshal(build(prompt, maxTokens, temperature))
		if err != nil {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", true
		}

		url := fmt.Sprintf("%s/%s:generateContent", c.cfg.BaseURL, model)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		if !c.authorize(ctx, req) {
			log.Printf("llm: no credentials configured; set GEMINI_API_KEY or GOOGLE_APPLICATION_CREDENTIALS")
			return "", true
		}

		resp, err := c.http.Do(req)
		if err != nil {
			log.Printf("llm: request to %s failed: %v", model, err)
			continue
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("llm: %s returned %d: %s", model, resp.StatusCode, snippet(raw))
			continue
		}

		for _, parse := range responseParsers {
			if out := strings.TrimSpace(parse(raw)); out != "" {
				return out, false
			}
		}
		log.Printf("llm: no parser understood response from %s: %s", model, snippet(raw))
	}
	return "", false
}

// backoff sleeps linearly in the attempt number, capped, honoring ctx.
func (c *Client) backoff(ctx context.Context, attempt int) {
	delay := time.Duration(attempt) * c.cfg.BackoffBase
	if delay > c.cfg.BackoffCap {
		delay = c.cfg.BackoffCap
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// authorize attaches a credential: service-account bearer token when
// configured (refreshed per call), else the API key as a query parameter.
// Returns false when neither is available.
func (c *Client) authorize(ctx context.Context, req *http.Request) bool {
	if tok := c.bearerToken(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
		return true
	}
	if c.cfg.APIKey != "" {
		q := req.URL.Query()
		q.Set("key", c.cfg.APIKey)
		req.URL.RawQuery = q.Encode()
		return true
	}
	return false
}

func (c *Client) bearerToken(ctx context.Context) string {
	path := c.cfg.CredentialsFile
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("llm: read service-account file: %v", err)
		return ""
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		log.Printf("llm: parse service-account credentials: %v", err)
		return ""
	}
	tok, err := creds.TokenSource.Token()
	if err != nil {
		log.Printf("llm: refresh bearer token: %v", err)
		return ""
	}
	return tok.AccessToken
}

// ValidateCredentials probes the model catalog and logs the outcome. Loud but
// non-fatal: without credentials the pipeline degrades to heuristic-only
// extraction.
func (c *Client) ValidateCredentials(ctx context.Context) {
	if c.cfg.APIKey == "" && c.cfg.CredentialsFile == "" {
		log.Printf("llm: WARNING: no API key or service-account configured; strict extraction will be unavailable")
		return
	}
	if _, err := c.ListModels(ctx, false); err != nil {
		log.Printf("llm: credential probe failed: %v", err)
		return
	}
	log.Printf("llm: credentials validated (model catalog reachable)")
}

func snippet(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
