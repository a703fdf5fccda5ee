// Package providers adapts the normalized transport request to each LLM
// vendor's HTTP API.
package providers

import (
	"fmt"
	"sort"

	"github.com/ahrav/namesmith/internal/llm/configuration"
	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

// Supported LLM provider identifiers, matching configuration keys.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// NewRouter creates a router with one adapter per configured provider.
// A provider without an API key is rejected up front.
func NewRouter(configs map[string]configuration.ProviderConfig) (transport.Router, error) {
	adapters := make(map[string]transport.ProviderAdapter, len(configs))

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", llmerrors.ErrMissingAPIKey, name)
		}
		var adapter transport.ProviderAdapter
		switch name {
		case ProviderOpenAI:
			adapter = NewOpenAIAdapter(cfg)
		case ProviderAnthropic:
			adapter = NewAnthropicAdapter(cfg)
		case ProviderGoogle:
			adapter = NewGoogleAdapter(cfg)
		default:
			return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, name)
		}
		adapters[name] = adapter
	}

	return &router{adapters: adapters}, nil
}

type router struct {
	adapters map[string]transport.ProviderAdapter
}

// Pick returns the adapter for provider. The model is not used for routing.
func (r *router) Pick(provider, _ string) (transport.ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, provider)
	}
	return adapter, nil
}

// Names lists the configured providers in sorted order.
func Names(r transport.Router) []string {
	rt, ok := r.(*router)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(rt.adapters))
	for n := range rt.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
