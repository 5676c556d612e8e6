package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"

	"stock-analyzer/observability"
)

// Breaker names, one per upstream provider
const (
	BreakerYahoo = "yahoo"
	BreakerNSE   = "nse"
)

// CircuitBreakerConfig tunes the breaker in front of one provider
type CircuitBreakerConfig struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // how long the breaker stays open before probing
	MinRequests  uint32        // calls needed in a window before it may trip
	FailureRatio float64       // failed share of those calls that trips it
}

// DefaultCircuitBreakerConfig trips after half of at least 5 calls fail and
// probes again after 30 seconds
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests:  5,
	Interval:     1 * time.Minute,
	Timeout:      30 * time.Second,
	MinRequests:  5,
	FailureRatio: 0.5,
}

// NSECircuitBreakerConfig suits the symbol list, which is fetched once per
// process and retried rarely: two failed loads open it for five minutes.
var NSECircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests:  1,
	Interval:     10 * time.Minute,
	Timeout:      5 * time.Minute,
	MinRequests:  2,
	FailureRatio: 1,
}

// CircuitBreakerStatus is a snapshot of one breaker for the health endpoint
type CircuitBreakerStatus struct {
	Name                 string `json:"name"`
	State                string `json:"state"`
	Requests             uint32 `json:"requests"`
	TotalSuccesses       uint32 `json:"total_successes"`
	TotalFailures        uint32 `json:"total_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
}

// CircuitBreakerRegistry holds the breakers guarding each provider
type CircuitBreakerRegistry struct {
	mu        sync.RWMutex
	breakers  map[string]*gobreaker.CircuitBreaker[any]
	config    CircuitBreakerConfig
	overrides map[string]CircuitBreakerConfig
}

// NewCircuitBreakerRegistry creates an empty registry; breakers are built
// with config unless Configure names them first
func NewCircuitBreakerRegistry(config CircuitBreakerConfig) *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers:  make(map[string]*gobreaker.CircuitBreaker[any]),
		config:    config,
		overrides: make(map[string]CircuitBreakerConfig),
	}
}

// NewProviderBreakers returns a registry with the Yahoo and NSE breakers
// already registered, so health reports them before the first call
func NewProviderBreakers() *CircuitBreakerRegistry {
	r := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	r.Configure(BreakerNSE, NSECircuitBreakerConfig)
	r.GetBreaker(BreakerYahoo)
	r.GetBreaker(BreakerNSE)
	return r
}

// Configure sets the config for name. It only affects a breaker that has
// not been created yet.
func (r *CircuitBreakerRegistry) Configure(name string, config CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[name] = config
}

// GetBreaker returns the breaker for name, creating it on first use
func (r *CircuitBreakerRegistry) GetBreaker(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok = r.breakers[name]; ok {
		return cb
	}

	cfg, ok := r.overrides[name]
	if !ok {
		cfg = r.config
	}
	cb = gobreaker.NewCircuitBreaker[any](breakerSettings(name, cfg))
	r.breakers[name] = cb
	observability.GetMetrics().SetCircuitBreakerState(name, stateToInt(gobreaker.StateClosed))
	return cb
}

func breakerSettings(name string, cfg CircuitBreakerConfig) gobreaker.Settings {
	minRequests, ratio := cfg.MinRequests, cfg.FailureRatio
	if minRequests == 0 {
		minRequests = DefaultCircuitBreakerConfig.MinRequests
	}
	if ratio <= 0 {
		ratio = DefaultCircuitBreakerConfig.FailureRatio
	}

	return gobreaker.Settings{
		Name:         name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: isBreakerSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.WithComponent("circuit_breaker").Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())

			metrics := observability.GetMetrics()
			metrics.SetCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(name)
			}
		},
	}
}

// Execute runs fn through the named breaker. Rejections come back wrapping
// ErrServiceUnavailable.
func (r *CircuitBreakerRegistry) Execute(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	result, err := r.GetBreaker(name).Execute(func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		observability.Warn("circuit breaker open, rejecting request", "breaker", name)
		return nil, fmt.Errorf("%w: %s circuit breaker open", ErrServiceUnavailable, name)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		observability.Warn("circuit breaker half-open, too many requests", "breaker", name)
		return nil, fmt.Errorf("%w: %s is probing after an outage", ErrServiceUnavailable, name)
	}
	return result, err
}

// Status returns a snapshot of every breaker keyed by name
func (r *CircuitBreakerRegistry) Status() map[string]CircuitBreakerStatus {
	r.mu.RLock()
	breakers := maps.Clone(r.breakers)
	r.mu.RUnlock()

	status := make(map[string]CircuitBreakerStatus, len(breakers))
	for name, cb := range breakers {
		counts := cb.Counts()
		status[name] = CircuitBreakerStatus{
			Name:                 name,
			State:                cb.State().String(),
			Requests:             counts.Requests,
			TotalSuccesses:       counts.TotalSuccesses,
			TotalFailures:        counts.TotalFailures,
			ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
			ConsecutiveFailures:  counts.ConsecutiveFailures,
		}
	}
	return status
}

// Healthy reports whether every breaker is closed
func (r *CircuitBreakerRegistry) Healthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cb := range r.breakers {
		if cb.State() != gobreaker.StateClosed {
			return false
		}
	}
	return true
}

var globalRegistry atomic.Pointer[CircuitBreakerRegistry]

// GetGlobalRegistry returns the process-wide registry, creating the provider
// breakers on first use
func GetGlobalRegistry() *CircuitBreakerRegistry {
	if r := globalRegistry.Load(); r != nil {
		return r
	}
	globalRegistry.CompareAndSwap(nil, NewProviderBreakers())
	return globalRegistry.Load()
}

// SetGlobalRegistry replaces the process-wide registry, used by tests
func SetGlobalRegistry(r *CircuitBreakerRegistry) {
	globalRegistry.Store(r)
}

// WithCircuitBreaker runs fn through the global registry's breaker for name
func WithCircuitBreaker[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	result, err := GetGlobalRegistry().Execute(ctx, name, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// isBreakerSuccess keeps answers that say "this symbol has nothing" and
// caller cancellations from counting against the upstream
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrSymbolNotFound) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, context.Canceled)
}

// stateToInt maps a breaker state to the gauge value: 0 closed, 1 half-open, 2 open
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
