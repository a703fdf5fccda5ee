package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahrav/namesmith/internal/domain"
)

// Validate rejects configurations that cannot run. Problems are joined so a
// single startup failure reports all of them.
func (c Config) Validate() error {
	var errs []error
	fail := func(sentinel error, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
	}

	switch c.Providers.Generation {
	case ProviderHeuristic, ProviderLLM:
	default:
		fail(domain.ErrUnknownProvider, "generation provider %q", c.Providers.Generation)
	}
	switch c.Providers.Scoring {
	case ProviderHeuristic, ProviderLLM:
	default:
		fail(domain.ErrUnknownProvider, "scoring provider %q", c.Providers.Scoring)
	}

	switch c.Providers.Availability {
	case ProviderStub:
		if s := c.Registrar.StubStatus; s != "" && !domain.AvailabilityStatus(s).Valid() {
			fail(domain.ErrConfiguration, "registrar.stub_status %q is not a known status", s)
		}
	case ProviderWhoAPI:
		if c.Registrar.WhoAPI.APIKey == "" {
			fail(domain.ErrMissingCredential, "availability provider %q requires %s", ProviderWhoAPI, whoAPIKeyEnv)
		}
	case ProviderWhoisJSON:
		if c.Registrar.WhoisJSON.APIKey == "" {
			fail(domain.ErrMissingCredential, "availability provider %q requires %s", ProviderWhoisJSON, whoisJSONKeyEnv)
		}
	default:
		fail(domain.ErrUnknownProvider, "availability provider %q", c.Providers.Availability)
	}

	if c.UsesLLM() {
		pc, ok := c.LLM.Providers[c.Models.Provider]
		switch {
		case !ok:
			fail(domain.ErrUnknownProvider, "llm vendor %q is not configured", c.Models.Provider)
		case pc.APIKey == "":
			fail(domain.ErrMissingCredential, "llm vendor %q requires %s", c.Models.Provider, pc.APIKeyEnv)
		}
	}

	if strings.TrimSpace(c.Models.Generation) == "" || strings.TrimSpace(c.Models.Scoring) == "" {
		fail(domain.ErrConfiguration, "default generation and scoring models must be set")
	}
	for _, m := range []string{c.Models.Generation, c.Models.Scoring} {
		if m != "" && !c.ModelAllowed(m) {
			fail(domain.ErrModelNotAllowed, "default model %q", m)
		}
	}

	switch c.Pipeline.Gather {
	case GatherHeuristic, GatherNone:
	default:
		fail(domain.ErrConfiguration, "pipeline.gather %q", c.Pipeline.Gather)
	}

	w := c.Rubric.Weights
	if w.Memorability < 0 || w.Pronounceability < 0 || w.Brandability < 0 ||
		w.Memorability+w.Pronounceability+w.Brandability <= 0 {
		fail(domain.ErrConfiguration, "rubric weights must be non-negative with a positive sum")
	}
	if c.Rubric.Version == "" {
		fail(domain.ErrConfiguration, "rubric.version must be set")
	}

	if c.Registrar.Concurrency <= 0 {
		fail(domain.ErrConfiguration, "registrar.concurrency must be positive")
	}
	if c.Registrar.RatePerSecond <= 0 || c.Registrar.Burst <= 0 {
		fail(domain.ErrConfiguration, "registrar rate and burst must be positive")
	}
	if c.Server.MaxConcurrentJobs <= 0 {
		fail(domain.ErrConfiguration, "server.max_concurrent_jobs must be positive")
	}
	if c.Database.DSN == "" {
		fail(domain.ErrConfiguration, "database.dsn must be set")
	}

	return errors.Join(errs...)
}
