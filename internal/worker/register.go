package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/availability"
	"github.com/ahrav/namesmith/internal/config"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/generation"
	"github.com/ahrav/namesmith/internal/llm"
	"github.com/ahrav/namesmith/internal/metrics"
	"github.com/ahrav/namesmith/internal/scoring"
	"github.com/ahrav/namesmith/internal/workflow"
)

type (
	generationCtor func(r *Registry, model string) (generation.Provider, error)
	scoringCtor    func(r *Registry, model string) (scoring.Provider, error)
)

var generationProviders = map[string]generationCtor{
	config.ProviderHeuristic: func(*Registry, string) (generation.Provider, error) {
		return generation.NewHeuristicProvider(), nil
	},
	config.ProviderLLM: func(r *Registry, model string) (generation.Provider, error) {
		return generation.NewLLMProvider(r.llmClient, r.cfg.Models.Provider, model,
			generation.WithLogger(r.logger)), nil
	},
}

var scoringProviders = map[string]scoringCtor{
	config.ProviderHeuristic: func(r *Registry, _ string) (scoring.Provider, error) {
		return scoring.NewHeuristicProvider(r.rubric), nil
	},
	config.ProviderLLM: func(r *Registry, model string) (scoring.Provider, error) {
		return scoring.NewLLMProvider(r.llmClient, r.cfg.Models.Provider, model, r.rubric,
			scoring.WithLogger(r.logger)), nil
	},
}

// Registry resolves configured provider identifiers to implementations. All
// credentials are checked when the registry is built; a missing one is a
// configuration error, never a silent fallback to a stub.
type Registry struct {
	cfg          config.Config
	rubric       scoring.Rubric
	llmClient    llm.Client
	availability availability.Provider
	redis        redis.Cmdable
	httpClient   *http.Client
	metrics      *metrics.Collector
	logger       *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLLMClient supplies the LLM client instead of building one from config.
func WithLLMClient(c llm.Client) RegistryOption { return func(r *Registry) { r.llmClient = c } }

// WithRedis enables the availability result cache.
func WithRedis(c redis.Cmdable) RegistryOption { return func(r *Registry) { r.redis = c } }

// WithHTTPClient sets the client used for registrar calls.
func WithHTTPClient(c *http.Client) RegistryOption { return func(r *Registry) { r.httpClient = c } }

// WithMetrics attaches the Prometheus collector.
func WithMetrics(m *metrics.Collector) RegistryOption { return func(r *Registry) { r.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RegistryOption { return func(r *Registry) { r.logger = l } }

// NewRegistry validates cfg and builds the shared clients. The availability
// provider is built once so its rate limiter and breaker span all jobs.
func NewRegistry(cfg config.Config, opts ...RegistryOption) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		cfg: cfg,
		rubric: scoring.Rubric{
			Version: cfg.Rubric.Version,
			Weights: scoring.Weights{
				Memorability:     cfg.Rubric.Weights.Memorability,
				Pronounceability: cfg.Rubric.Weights.Pronounceability,
				Brandability:     cfg.Rubric.Weights.Brandability,
			},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: cfg.Registrar.Timeout}
	}

	if _, ok := generationProviders[cfg.Providers.Generation]; !ok {
		return nil, fmt.Errorf("%w: generation provider %q", domain.ErrUnknownProvider, cfg.Providers.Generation)
	}
	if _, ok := scoringProviders[cfg.Providers.Scoring]; !ok {
		return nil, fmt.Errorf("%w: scoring provider %q", domain.ErrUnknownProvider, cfg.Providers.Scoring)
	}

	if cfg.UsesLLM() && r.llmClient == nil {
		var obs llm.CallObserver
		if r.metrics != nil {
			obs = r.metrics
		}
		client, err := InitializeLLMClient(cfg, obs, r.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		r.llmClient = client
	}

	avail, err := r.buildAvailability()
	if err != nil {
		return nil, err
	}
	r.availability = avail
	return r, nil
}

func (r *Registry) buildAvailability() (availability.Provider, error) {
	reg := r.cfg.Registrar
	var registrar availability.Registrar
	switch r.cfg.Providers.Availability {
	case config.ProviderStub:
		var opts []availability.StubOption
		if reg.StubStatus != "" {
			opts = append(opts, availability.WithFixedStatus(domain.AvailabilityStatus(reg.StubStatus)))
		}
		return availability.NewStubProvider(opts...), nil
	case config.ProviderWhoAPI:
		if reg.WhoAPI.APIKey == "" {
			return nil, fmt.Errorf("%w: whoapi api key", domain.ErrMissingCredential)
		}
		registrar = availability.NewWhoAPI(r.httpClient, reg.WhoAPI.BaseURL, reg.WhoAPI.APIKey)
	case config.ProviderWhoisJSON:
		if reg.WhoisJSON.APIKey == "" {
			return nil, fmt.Errorf("%w: whoisjsonapi api key", domain.ErrMissingCredential)
		}
		registrar = availability.NewWhoisJSON(r.httpClient, reg.WhoisJSON.BaseURL, reg.WhoisJSON.APIKey)
	default:
		return nil, fmt.Errorf("%w: availability provider %q", domain.ErrUnknownProvider, r.cfg.Providers.Availability)
	}

	cc := availability.DefaultCheckerConfig()
	cc.Timeout = reg.Timeout
	cc.Concurrency = reg.Concurrency
	cc.RatePerSecond = reg.RatePerSecond
	cc.Burst = reg.Burst
	cc.CacheTTL = reg.CacheTTL

	opts := []availability.CheckerOption{availability.WithLogger(r.logger)}
	if r.redis != nil {
		opts = append(opts, availability.WithCache(availability.NewRedisCache(r.redis)))
	}
	if r.metrics != nil {
		opts = append(opts, availability.WithObserver(r.metrics))
	}
	return availability.NewChecker(registrar, cc, opts...), nil
}

// Providers implements workflow.ProviderFactory.
func (r *Registry) Providers(_ context.Context, models domain.ModelSelection) (activity.Providers, error) {
	gen, err := generationProviders[r.cfg.Providers.Generation](r, models.Generation)
	if err != nil {
		return activity.Providers{}, err
	}
	sc, err := scoringProviders[r.cfg.Providers.Scoring](r, models.Scoring)
	if err != nil {
		return activity.Providers{}, err
	}
	return activity.Providers{Generation: gen, Scoring: sc, Availability: r.availability}, nil
}

// Settings derives the executor settings from the configuration.
func (r *Registry) Settings() workflow.Settings {
	gather := activity.HeuristicGather
	if r.cfg.Pipeline.Gather == config.GatherNone {
		gather = activity.NoopGather
	}
	return workflow.Settings{
		Models: domain.ModelSelection{
			Generation: r.cfg.Models.Generation,
			Scoring:    r.cfg.Models.Scoring,
		},
		Allowlist: r.cfg.Models.Allowlist,
		Budgets: activity.Budgets{
			Generate:     r.cfg.Pipeline.GenerateBudget,
			Score:        r.cfg.Pipeline.ScoreBudget,
			Availability: r.cfg.Pipeline.AvailabilityBudget,
		},
		Gather:          gather,
		AvailabilityTTL: r.cfg.Registrar.CacheTTL,
	}
}

// AvailabilityName reports the configured availability provider id.
func (r *Registry) AvailabilityName() string { return r.cfg.Providers.Availability }

var _ workflow.ProviderFactory = (*Registry)(nil)
