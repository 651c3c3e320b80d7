// Package prompt provides a small registry of prompt templates for LLM
// interactions, so prompt text lives in one place instead of being scattered
// through extraction code.
package prompt

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"
)

// Template is a reusable prompt: a fixed system prompt plus a Go text
// template for the user prompt.
type Template struct {
	ID     string
	System string
	User   *template.Template
}

// Registry holds registered templates keyed by ID.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

var (
	globalRegistry *Registry
	once           sync.Once
)

// Get returns the process-wide registry singleton.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{templates: make(map[string]*Template)}
		registerBuiltins(globalRegistry)
	})
	return globalRegistry
}

// Register adds a template to the registry.
func (r *Registry) Register(id, system, userTmpl string) error {
	if id == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	t, err := template.New(id).Parse(userTmpl)
	if err != nil {
		return fmt.Errorf("parse prompt template %q: %w", id, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[id] = &Template{ID: id, System: system, User: t}
	return nil
}

// Render returns the system prompt and the executed user prompt for id.
func (r *Registry) Render(id string, vars map[string]interface{}) (system string, user string, err error) {
	r.mu.RLock()
	t, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("prompt %q not registered", id)
	}
	var buf bytes.Buffer
	if err := t.User.Execute(&buf, vars); err != nil {
		return "", "", fmt.Errorf("render prompt %q: %w", id, err)
	}
	return t.System, buf.String(), nil
}
