// Package retry coordinates bounded retries around single upstream calls
//
// Flow-control signals sleep exactly the upstream-dictated wait. Transient
// failures back off exponentially with jitter. Semantic rejections are fatal
// on the first attempt
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	perr "historian/internal/platform/errors"
	"historian/internal/platform/logger"
)

// Config bounds the retry loop
type Config struct {
	// MaxAttempts is the total number of calls, including the first
	MaxAttempts int
	// InitialDelay seeds the transient backoff curve
	InitialDelay time.Duration
	// MaxDelay caps the pre-jitter backoff
	MaxDelay time.Duration
	// BackoffFactor multiplies the delay per attempt
	BackoffFactor float64
}

// DefaultConfig returns the stock retry bounds
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = d.BackoffFactor
	}
	return c
}

// WaitHook observes every flow-control wait, once per occurrence
// This is the one place upstream rate-limit pressure becomes measurable
type WaitHook func(op string, attempt int, wait time.Duration)

// Coordinator wraps upstream calls with the retry state machine
type Coordinator struct {
	cfg   Config
	log   logger.Logger
	hook  WaitHook
	sleep func(ctx context.Context, d time.Duration) error
	randf func() float64
}

// Option mutates a Coordinator during New
type Option func(*Coordinator)

// WithWaitHook registers the flow-control metrics hook
func WithWaitHook(h WaitHook) Option {
	return func(c *Coordinator) { c.hook = h }
}

// WithSleep swaps the sleep implementation, for tests
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Coordinator) { c.sleep = fn }
}

// WithRand swaps the jitter source, for tests
func WithRand(fn func() float64) Option {
	return func(c *Coordinator) { c.randf = fn }
}

// New constructs a Coordinator, zero cfg fields fall back to defaults
func New(cfg Config, log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:   cfg.normalized(),
		log:   log,
		sleep: sleepCtx,
		randf: rand.Float64,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// sleepCtx sleeps for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn up to MaxAttempts times
//
// Flow-control errors sleep exactly the advertised wait, no jitter, and fire
// the wait hook once per occurrence. Transient failures back off. Anything
// else is surfaced immediately. Exhausted flow control surfaces the last
// error with its wait intact so the caller can back off itself
func (c *Coordinator) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		switch {
		case perr.IsCode(err, perr.ErrorCodeFlowControl):
			wait := perr.RetryAfterOf(err)
			if c.hook != nil {
				c.hook(op, attempt, wait)
			}
			if attempt >= c.cfg.MaxAttempts {
				c.log.Warn().Str("op", op).Int("attempts", attempt).Dur("wait", wait).
					Msg("flow control persisted through all attempts")
				return err
			}
			c.log.Info().Str("op", op).Int("attempt", attempt).Dur("wait", wait).
				Msg("upstream flow control, honoring wait")
			if serr := c.sleep(ctx, wait); serr != nil {
				return serr
			}

		case perr.Retryable(err):
			if attempt >= c.cfg.MaxAttempts {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable,
					"%s failed after %d attempts", op, attempt)
			}
			d := c.withJitter(c.Backoff(attempt))
			c.log.Warn().Str("op", op).Int("attempt", attempt).Dur("backoff", d).Err(err).
				Msg("transient upstream failure, backing off")
			if serr := c.sleep(ctx, d); serr != nil {
				return serr
			}

		default:
			// semantic rejection, retrying cannot change the outcome
			return err
		}
	}
}

// Backoff returns the pre-jitter delay after the given 1-based attempt:
// min(InitialDelay * BackoffFactor^(attempt-1), MaxDelay)
func (c *Coordinator) Backoff(attempt int) time.Duration {
	d := float64(c.cfg.InitialDelay) * math.Pow(c.cfg.BackoffFactor, float64(attempt-1))
	if d > float64(c.cfg.MaxDelay) {
		return c.cfg.MaxDelay
	}
	return time.Duration(d)
}

// withJitter spreads d by up to ±25%
func (c *Coordinator) withJitter(d time.Duration) time.Duration {
	f := 0.75 + 0.5*c.randf()
	return time.Duration(float64(d) * f)
}
