package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Router manages reply providers and routing
type Router struct {
	providers       map[string]Provider
	defaultProvider string
	defaultModel    string
	mu              sync.RWMutex
}

// NewRouter creates a new provider router. An empty defaultModel selects the
// provider's own default.
func NewRouter(defaultProvider, defaultModel string) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
	}
}

// RegisterProvider registers a reply provider
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// ListProviders returns list of configured provider names
func (r *Router) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var providers []string
	for name, p := range r.providers {
		if p.IsConfigured() {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

// GetProvider returns a provider by name
func (r *Router) GetProvider(name string) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}

	if !p.IsConfigured() {
		return nil, fmt.Errorf("provider not configured: %s", name)
	}

	return p, nil
}

// DefaultProvider returns the default provider name
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// Reply asks the default provider for an assistant reply
func (r *Router) Reply(ctx context.Context, req Request) (*Response, error) {
	provider, err := r.GetProvider("")
	if err != nil {
		return nil, err
	}

	model := r.defaultModel
	if model == "" {
		model = provider.DefaultModel()
	}

	resp, err := provider.Reply(ctx, req, model)
	if err != nil {
		return nil, fmt.Errorf("%s reply failed: %w", provider.Name(), err)
	}
	return resp, nil
}

// ProviderInfo contains information about a reply provider
type ProviderInfo struct {
	Name       string   `json:"name"`
	Models     []string `json:"models"`
	Default    bool     `json:"default"`
	Configured bool     `json:"configured"`
}

// GetProvidersInfo returns information about all providers
func (r *Router) GetProvidersInfo() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for name, p := range r.providers {
		infos = append(infos, ProviderInfo{
			Name:       name,
			Models:     p.AvailableModels(),
			Default:    name == r.defaultProvider,
			Configured: p.IsConfigured(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
