package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
)

// ModelCache is the one piece of long-lived process state: the discovered
// generation model. Init-on-first-use under a mutex; discovery failures are
// not cached so a later call can retry. The cache never expires — a restart
// picks up newly available models, which is acceptable because catalogs
// change infrequently.
type ModelCache struct {
	mu    sync.Mutex
	model string
	set   bool
}

// NewModelCache returns an empty cache.
func NewModelCache() *ModelCache {
	return &ModelCache{}
}

// PreseededCache returns a cache already resolved to model, so tests can
// bypass network discovery.
func PreseededCache(model string) *ModelCache {
	return &ModelCache{model: model, set: true}
}

func (mc *ModelCache) resolve(discover func() (string, error)) string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.set {
		return mc.model
	}
	m, err := discover()
	if err != nil {
		log.Printf("llm: model discovery failed: %v", err)
		return ""
	}
	mc.model = m
	mc.set = true
	return m
}

func (c *Client) resolveModel(ctx context.Context) string {
	return c.cache.resolve(func() (string, error) {
		return c.discoverModel(ctx)
	})
}

// discoverModel picks a generation-capable model from the catalog, preferring
// stable channels over preview/experimental ones and honoring the configured
// priority order.
func (c *Client) discoverModel(ctx context.Context) (string, error) {
	models, err := c.ListModels(ctx, true)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", fmt.Errorf("catalog advertises no generation-capable models")
	}

	var stable []string
	for _, m := range models {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "preview") || strings.Contains(lower, "exp") {
			continue
		}
		stable = append(stable, m)
	}
	pool := stable
	if len(pool) == 0 {
		pool = models
	}

	for _, want := range c.cfg.PriorityModels {
		for _, m := range pool {
			if m == want {
				log.Printf("llm: discovered generation model (priority): %s", m)
				return m, nil
			}
		}
	}
	log.Printf("llm: discovered generation model: %s", pool[0])
	return pool[0], nil
}

// ListModels fetches the provider's model catalog. With generationOnly set,
// only models advertising generateContent support are returned. Names are
// normalized by stripping the "models/" resource prefix.
func (c *Client) ListModels(ctx context.Context, generationOnly bool) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	if !c.authorize(ctx, req) {
		return nil, fmt.Errorf("no credentials to list models")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model list request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model list returned %d: %s", resp.StatusCode, snippet(raw))
	}

	var catalog struct {
		Models []struct {
			Name                       string   `json:"name"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	var models []string
	for _, m := range catalog.Models {
		if m.Name == "" {
			continue
		}
		if generationOnly {
			supported := false
			for _, method := range m.SupportedGenerationMethods {
				if method == "generateContent" {
					supported = true
					break
				}
			}
			if !supported {
				continue
			}
		}
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models, nil
}
