// Package oracle implements the LLM script-generation adapter: primary and
// secondary backends, API key rotation, rate limiting, retry with jitter,
// and a deterministic fallback skeleton for when every live backend fails.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/resilience"
)

// ErrFatal wraps a non-retryable backend error (HTTP 4xx other than 429).
var ErrFatal = errors.New("oracle: fatal, non-retryable backend error")

// ErrParse is returned when a backend's response cannot be parsed into a
// Script.
var ErrParse = errors.New("oracle: response did not parse as a script")

// Backend generates a script from a single LLM provider. RateLimited
// implementations additionally expose key rotation for 429 handling.
type Backend interface {
	Name() string
	GenerateScript(ctx context.Context, topic string, durationSeconds int, tone model.Tone) (*model.Script, error)
}

// RateLimited is implemented by backends that hold more than one API key:
// on a 429 the adapter calls RotateKey and retries at once on the next key.
// The adapter's minimum inter-call interval applies to every backend,
// whether or not it implements this interface.
type RateLimited interface {
	Backend
	RotateKey() (rotated bool)
}

// RetryClassifier lets a backend distinguish a 429 ("rotate and retry
// immediately") from other retryable errors (backoff) from fatal 4xx
// errors, without the adapter needing to know the backend's transport.
type RetryClassifier interface {
	ClassifyError(err error) ErrorClass
}

// ErrorClass is the adapter's view of a backend call failure.
type ErrorClass int

const (
	ErrorClassFatal ErrorClass = iota
	ErrorClassRateLimited
	ErrorClassTransient
)

const (
	maxRetries       = 3
	maxRotations     = 5
	baseBackoffDelay = 500 * time.Millisecond
)

// Adapter owns the primary/secondary backend pair, the process-wide rate
// limiter, and per-backend circuit breakers guarding against hammering a
// backend that is already failing.
type Adapter struct {
	primary   Backend
	secondary Backend
	limiter   *rate.Limiter

	primaryBreaker   *resilience.CircuitBreaker
	secondaryBreaker *resilience.CircuitBreaker

	// AllowFallback controls whether GenerateScript may return the canned
	// deterministic skeleton when both backends are exhausted. New sets it
	// to true; cmd/scenecraft overwrites it from the allow_fallback config
	// key. Nothing changes it per job or per regeneration attempt.
	AllowFallback bool
}

// New constructs an Adapter. secondary may be nil if no fallback provider
// key is configured; minInterval is the minimum spacing between calls
// against either backend, since both share one limiter
// (GEMINI_MIN_INTERVAL_MS in the environment).
func New(primary, secondary Backend, minInterval time.Duration) *Adapter {
	return &Adapter{
		primary:   primary,
		secondary: secondary,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		primaryBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "oracle-primary",
		}),
		secondaryBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "oracle-secondary",
		}),
		AllowFallback: true,
	}
}

// GenerateScript tries the primary backend with retry/rotation/backoff,
// falls back to the secondary backend on exhaustion, and finally returns a
// deterministic skeleton if AllowFallback and both backends failed.
func (a *Adapter) GenerateScript(ctx context.Context, topic string, durationSeconds int, tone model.Tone) (*model.Script, error) {
	if a.primary != nil {
		script, err := a.callWithRetry(ctx, a.primary, a.primaryBreaker, topic, durationSeconds, tone)
		if err == nil {
			return script, nil
		}
		if errors.Is(err, ErrFatal) {
			return nil, err
		}
	}

	if a.secondary != nil {
		script, err := a.callWithRetry(ctx, a.secondary, a.secondaryBreaker, topic, durationSeconds, tone)
		if err == nil {
			return script, nil
		}
		if errors.Is(err, ErrFatal) {
			return nil, err
		}
	}

	if a.AllowFallback {
		return FallbackSkeleton(topic), nil
	}

	return nil, fmt.Errorf("%w: all backends exhausted and fallback disabled", ErrFatal)
}

func (a *Adapter) callWithRetry(ctx context.Context, backend Backend, breaker *resilience.CircuitBreaker, topic string, durationSeconds int, tone model.Tone) (*model.Script, error) {
	var lastErr error
	rotator, _ := backend.(RateLimited)
	bo := newBackOff()
	rotations := 0

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var script *model.Script
		cbErr := breaker.Execute(func() error {
			var callErr error
			script, callErr = backend.GenerateScript(ctx, topic, durationSeconds, tone)
			return callErr
		})
		if cbErr == nil {
			return script, nil
		}
		lastErr = cbErr

		class := classify(backend, cbErr)
		if class == ErrorClassFatal {
			return nil, fmt.Errorf("%w: %s: %v", ErrFatal, backend.Name(), cbErr)
		}
		if class == ErrorClassRateLimited && rotator != nil && rotations < maxRotations && rotator.RotateKey() {
			rotations++
			attempt--
			continue // immediate retry on a rotated key, does not count against maxRetries
		}

		if attempt == maxRetries {
			break
		}
		delay := bo.NextBackOff()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%s: exhausted retries: %w", backend.Name(), lastErr)
}

func classify(backend Backend, err error) ErrorClass {
	if c, ok := backend.(RetryClassifier); ok {
		return c.ClassifyError(err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "429") {
		return ErrorClassRateLimited
	}
	return ErrorClassTransient
}

// newBackOff returns the exponential-with-jitter policy for transient oracle
// retries. MaxElapsedTime is left at zero (unbounded) since callWithRetry
// itself bounds the attempt count via maxRetries.
func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseBackoffDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.3
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}
