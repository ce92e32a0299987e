package gateway

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy is an immutable retry configuration. The server and client tiers
// carry independent instances with independent defaults.
type Policy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	JitterRange       time.Duration
}

// ServerPolicy is the default policy for the server-side upstream executor.
func ServerPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		BackoffMultiplier: 2.0,
		JitterRange:       250 * time.Millisecond,
	}
}

// ClientPolicy is the default policy for the gateway client wrapper.
func ClientPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		BackoffMultiplier: 2.0,
		JitterRange:       250 * time.Millisecond,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.BackoffMultiplier < 1 {
		p.BackoffMultiplier = 1
	}
	return p
}

// Backoff returns the base delay before retrying after the given 1-based
// attempt: InitialDelay * BackoffMultiplier^(attempt-1), without jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1)))
}

// Delay returns the backoff for the attempt plus random jitter in
// [0, JitterRange).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.Backoff(attempt)
	if p.JitterRange > 0 {
		d += time.Duration(rand.Int63n(int64(p.JitterRange)))
	}
	return d
}

// Do runs fn up to MaxAttempts times, sleeping Delay(attempt) between
// attempts. It stops early on success, on a non-retryable envelope, or when
// ctx is done. Attempts are strictly sequential so a non-retryable
// classification on attempt N reliably prevents attempt N+1.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, *Envelope)) (T, *Envelope) {
	p = p.normalized()
	var zero T
	var last *Envelope

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, env := fn(ctx, attempt)
		if env == nil {
			return result, nil
		}
		last = env
		if !env.Retryable || attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, &Envelope{Kind: KindTimeout, Message: "deadline exceeded while waiting to retry", Retryable: true}
		case <-time.After(p.Delay(attempt)):
		}
	}

	return zero, last
}
