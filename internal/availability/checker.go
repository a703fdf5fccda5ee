package availability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/namesmith/internal/domain"
)

// Observer receives one notification per resolved lookup.
type Observer interface {
	ObserveAvailability(registrar, status string, cached bool)
}

// CheckerConfig tunes a Checker.
type CheckerConfig struct {
	// Timeout bounds each single-domain lookup; zero disables it.
	Timeout       time.Duration
	Concurrency   int
	RatePerSecond float64
	Burst         int
	CacheTTL      time.Duration

	// Breaker trips after BreakerMinRequests lookups when the failure
	// ratio reaches BreakerFailureRatio, and retries a trial lookup after BreakerOpenTimeout.
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

// DefaultCheckerConfig returns production defaults.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		Timeout:             5 * time.Second,
		Concurrency:         4,
		RatePerSecond:       5,
		Burst:               5,
		CacheTTL:            time.Hour,
		BreakerMinRequests:  5,
		BreakerFailureRatio: 0.6,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// Checker fans candidate lookups out to a Registrar with bounded
// concurrency, pacing, a circuit breaker and a result cache.
type Checker struct {
	registrar Registrar
	cfg       CheckerConfig
	cache     Cache
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
}

// CheckerOption customizes a Checker.
type CheckerOption func(*Checker)

// WithCache sets the result cache.
func WithCache(c Cache) CheckerOption { return func(ch *Checker) { ch.cache = c } }

// WithObserver reports lookups, typically to Prometheus.
func WithObserver(o Observer) CheckerOption { return func(ch *Checker) { ch.observer = o } }

// WithLogger sets the checker logger.
func WithLogger(l *slog.Logger) CheckerOption { return func(ch *Checker) { ch.logger = l } }

// NewChecker creates a Checker over registrar.
func NewChecker(registrar Registrar, cfg CheckerConfig, opts ...CheckerOption) *Checker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	ch := &Checker{
		registrar: registrar,
		cfg:       cfg,
		cache:     NoopCache{},
		limiter:   rate.NewLimiter(limit, max(cfg.Burst, 1)),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ch)
	}
	ch.logger = ch.logger.With("component", "availability", "registrar", registrar.Name())
	ch.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "registrar/" + registrar.Name(),
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ch.logger.Warn("registrar circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return ch
}

// Check implements Provider. Results keep input order.
func (c *Checker) Check(ctx context.Context, candidates []domain.Candidate) ([]domain.AvailabilityResult, error) {
	results := make([]domain.AvailabilityResult, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i, cand := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = c.lookup(ctx, cand.FullDomain())
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

type lookupOutcome struct {
	status  domain.AvailabilityStatus
	payload map[string]any
}

func (c *Checker) lookup(ctx context.Context, fullDomain string) domain.AvailabilityResult {
	name := c.registrar.Name()

	if cached, ok, err := c.cache.Get(ctx, name, fullDomain); err != nil {
		c.logger.WarnContext(ctx, "availability cache read failed", "domain", fullDomain, "error", err)
	} else if ok {
		c.observe(cached.Status, true)
		cached.Cached = true
		return cached
	}

	itemCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	res := domain.AvailabilityResult{FullDomain: fullDomain, Registrar: name}

	if err := c.limiter.Wait(itemCtx); err != nil {
		res.Status = domain.AvailabilityError
		res.Raw = map[string]any{"error": "rate limiter: " + err.Error()}
		res.CheckedAt = c.now().UTC()
		c.observe(res.Status, false)
		return res
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		status, payload, err := c.registrar.Lookup(itemCtx, fullDomain)
		return lookupOutcome{status: status, payload: payload}, err
	})
	res.CheckedAt = c.now().UTC()

	outcome, _ := out.(lookupOutcome)
	res.Raw = outcome.payload
	if err != nil {
		res.Status = domain.AvailabilityError
		if res.Raw == nil {
			res.Raw = map[string]any{}
		}
		res.Raw["error"] = err.Error()
		c.logger.WarnContext(ctx, "registrar lookup failed", "domain", fullDomain, "error", err)
		c.observe(res.Status, false)
		return res
	}
	res.Status = outcome.status
	c.observe(res.Status, false)

	if res.Status.Definitive() {
		if err := c.cache.Set(ctx, name, res, c.cfg.CacheTTL); err != nil {
			c.logger.WarnContext(ctx, "availability cache write failed", "domain", fullDomain, "error", err)
		}
	}
	return res
}

func (c *Checker) observe(status domain.AvailabilityStatus, cached bool) {
	if c.observer != nil {
		c.observer.ObserveAvailability(c.registrar.Name(), string(status), cached)
	}
}
