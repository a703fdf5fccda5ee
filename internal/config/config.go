// Package config holds the process configuration for namesmith. A Config is
// built once at startup by Load and passed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/llm/configuration"
)

const (
	configPathEnv        = "NAMESMITH_CONFIG"
	databaseDSNEnv       = "DATABASE_DSN"
	redisAddrEnv         = "REDIS_ADDR"
	httpAddrEnv          = "HTTP_ADDR"
	logLevelEnv          = "NAMESMITH_LOG_LEVEL"
	whoAPIKeyEnv         = "WHOAPI_API_KEY"
	whoisJSONKeyEnv      = "WHOISJSON_API_KEY"
	generationModelEnv   = "GENERATION_MODEL"
	scoringModelEnv      = "SCORING_MODEL"
	registrarProviderEnv = "REGISTRAR_PROVIDER"
	maxConcurrentJobsEnv = "NAMESMITH_MAX_CONCURRENT_JOBS"
)

// Provider identifiers accepted by the provider registry.
const (
	ProviderHeuristic = "heuristic"
	ProviderLLM       = "llm"
	ProviderStub      = "stub"
	ProviderWhoAPI    = "whoapi"
	ProviderWhoisJSON = "whoisjsonapi"
)

// Gather stage variants.
const (
	GatherHeuristic = "heuristic"
	GatherNone      = "none"
)

// Config holds every setting the service reads at startup.
type Config struct {
	Server    ServerConfig         `yaml:"server"`
	Database  DatabaseConfig       `yaml:"database"`
	Redis     RedisConfig          `yaml:"redis"`
	Logging   LoggingConfig        `yaml:"logging"`
	Models    ModelsConfig         `yaml:"models"`
	Providers ProvidersConfig      `yaml:"providers"`
	Pipeline  PipelineConfig       `yaml:"pipeline"`
	Rubric    RubricConfig         `yaml:"rubric"`
	Registrar RegistrarConfig      `yaml:"registrar"`
	LLM       configuration.Config `yaml:"llm"`
}

// ServerConfig describes the HTTP listener and the job runner.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string      `yaml:"cors_origins"`
}

// DatabaseConfig names the relational store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the availability cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ModelsConfig holds default model names and the optional allowlist.
// An empty allowlist permits every model.
type ModelsConfig struct {
	Provider   string   `yaml:"provider"`
	Generation string   `yaml:"generation"`
	Scoring    string   `yaml:"scoring"`
	Allowlist  []string `yaml:"allowlist"`
}

// ProvidersConfig selects one implementation per provider family.
type ProvidersConfig struct {
	Generation   string `yaml:"generation"`
	Scoring      string `yaml:"scoring"`
	Availability string `yaml:"availability"`
}

// PipelineConfig holds per-stage time budgets. A budget <= 0 is unbounded.
type PipelineConfig struct {
	Gather             string        `yaml:"gather"`
	GenerateBudget     time.Duration `yaml:"generate_budget"`
	ScoreBudget        time.Duration `yaml:"score_budget"`
	AvailabilityBudget time.Duration `yaml:"availability_budget"`
}

// RubricConfig versions the scoring rubric and weights the overall score.
type RubricConfig struct {
	Version string        `yaml:"version"`
	Weights RubricWeights `yaml:"weights"`
}

// RubricWeights weight the three sub-scores when deriving overall.
type RubricWeights struct {
	Memorability     float64 `yaml:"memorability"`
	Pronounceability float64 `yaml:"pronounceability"`
	Brandability     float64 `yaml:"brandability"`
}

// RegistrarConfig controls availability lookups.
type RegistrarConfig struct {
	// Timeout bounds each single-domain lookup.
	Timeout       time.Duration   `yaml:"timeout"`
	Concurrency   int             `yaml:"concurrency"`
	RatePerSecond float64         `yaml:"rate_per_second"`
	Burst         int             `yaml:"burst"`
	CacheTTL      time.Duration   `yaml:"cache_ttl"`
	StubStatus    string          `yaml:"stub_status"`
	WhoAPI        RegistrarVendor `yaml:"whoapi"`
	WhoisJSON     RegistrarVendor `yaml:"whoisjsonapi"`
}

// RegistrarVendor holds one registrar API's endpoint and credential.
type RegistrarVendor struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	llmCfg := configuration.DefaultConfig()
	llmCfg.Providers = map[string]configuration.ProviderConfig{
		"openai":    {APIKeyEnv: "OPENAI_API_KEY"},
		"anthropic": {APIKeyEnv: "ANTHROPIC_API_KEY"},
		"google":    {APIKeyEnv: "GOOGLE_API_KEY"},
	}

	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MaxConcurrentJobs: 4,
			ShutdownTimeout:   30 * time.Second,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{DSN: "file:namesmith.db?_foreign_keys=on"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Models: ModelsConfig{
			Provider:   "openai",
			Generation: "gpt-4o-mini",
			Scoring:    "gpt-4o-mini",
		},
		Providers: ProvidersConfig{
			Generation:   ProviderHeuristic,
			Scoring:      ProviderHeuristic,
			Availability: ProviderStub,
		},
		Pipeline: PipelineConfig{
			Gather:             GatherHeuristic,
			GenerateBudget:     60 * time.Second,
			ScoreBudget:        60 * time.Second,
			AvailabilityBudget: 30 * time.Second,
		},
		Rubric: RubricConfig{
			Version: "v1",
			Weights: RubricWeights{Memorability: 1, Pronounceability: 1, Brandability: 1},
		},
		Registrar: RegistrarConfig{
			Timeout:       5 * time.Second,
			Concurrency:   4,
			RatePerSecond: 5,
			Burst:         5,
			CacheTTL:      time.Hour,
			WhoAPI:        RegistrarVendor{BaseURL: "https://api.whoapi.com/"},
			WhoisJSON:     RegistrarVendor{BaseURL: "https://whoisjsonapi.com/v1/"},
		},
		LLM: *llmCfg,
	}
}

// Load builds the configuration from defaults, the YAML file at path (or the
// file named by NAMESMITH_CONFIG when path is empty) and environment
// overrides, then validates it.
// A missing file is not an error; an unreadable or malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("%w: read %s: %w", domain.ErrConfiguration, path, err)
		default:
			if err := cfg.overlay(raw); err != nil {
				return Config{}, fmt.Errorf("%w: parse %s: %w", domain.ErrConfiguration, path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// overlay decodes YAML on top of the current values. Provider maps are
// merged key by key so a file can tune one LLM vendor without dropping the rest.
func (c *Config) overlay(raw []byte) error {
	base := maps.Clone(c.LLM.Providers)
	c.LLM.Providers = nil
	if err := yaml.Unmarshal(raw, c); err != nil {
		return err
	}
	for name, pc := range c.LLM.Providers {
		if pc.APIKeyEnv == "" {
			pc.APIKeyEnv = base[name].APIKeyEnv
		}
		base[name] = pc
	}
	c.LLM.Providers = base
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(whoAPIKeyEnv); v != "" {
		c.Registrar.WhoAPI.APIKey = v
	}
	if v := os.Getenv(whoisJSONKeyEnv); v != "" {
		c.Registrar.WhoisJSON.APIKey = v
	}
	if v := os.Getenv(generationModelEnv); v != "" {
		c.Models.Generation = v
	}
	if v := os.Getenv(scoringModelEnv); v != "" {
		c.Models.Scoring = v
	}
	if v := os.Getenv(registrarProviderEnv); v != "" {
		c.Providers.Availability = v
	}
	if v := os.Getenv(maxConcurrentJobsEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", domain.ErrConfiguration, maxConcurrentJobsEnv, v)
		}
		c.Server.MaxConcurrentJobs = n
	}

	for name, pc := range c.LLM.Providers {
		if pc.APIKey == "" && pc.APIKeyEnv != "" {
			pc.APIKey = os.Getenv(pc.APIKeyEnv)
			c.LLM.Providers[name] = pc
		}
	}
	return nil
}

// LLMConfig returns the LLM transport configuration restricted to the
// vendors that have a resolved API key.
func (c Config) LLMConfig() *configuration.Config {
	out := c.LLM
	out.Providers = make(map[string]configuration.ProviderConfig, len(c.LLM.Providers))
	for name, pc := range c.LLM.Providers {
		if pc.APIKey != "" {
			out.Providers[name] = pc
		}
	}
	return &out
}

// UsesLLM reports whether any selected provider needs the LLM transport.
func (c Config) UsesLLM() bool {
	return c.Providers.Generation == ProviderLLM || c.Providers.Scoring == ProviderLLM
}

// ModelAllowed reports whether model passes the allowlist.
func (c Config) ModelAllowed(model string) bool {
	return len(c.Models.Allowlist) == 0 || slices.Contains(c.Models.Allowlist, model)
}
