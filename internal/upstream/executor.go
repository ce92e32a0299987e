package upstream

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"moviegen/internal/domain"
	"moviegen/internal/gateway"
	"moviegen/internal/infra"
)

// AttemptObserver is notified of every individual upstream attempt.
// infra.Metrics satisfies it.
type AttemptObserver interface {
	RecordAttempt(operation string)
}

// ExecutorOptions configures the server-side retry executor.
type ExecutorOptions struct {
	Client       *Client
	Policy       gateway.Policy
	TextTimeout  time.Duration
	MediaTimeout time.Duration
	Quota        gateway.QuotaMatcher
	Logger       *infra.Logger
	Observer     AttemptObserver
}

// Executor performs one logical action-call against the upstream service
// with bounded retry for transient faults. Rate-limit classifications are
// propagated after a single attempt; timeouts and 5xx are retried with
// backoff and jitter up to the policy limit.
type Executor struct {
	client       *Client
	policy       gateway.Policy
	textTimeout  time.Duration
	mediaTimeout time.Duration
	quota        gateway.QuotaMatcher
	logger       infra.Logger
	observer     AttemptObserver
}

// NewExecutor wraps client with the retry policy and per-attempt timeouts.
func NewExecutor(opts ExecutorOptions) *Executor {
	e := &Executor{
		client:       opts.Client,
		policy:       opts.Policy,
		textTimeout:  opts.TextTimeout,
		mediaTimeout: opts.MediaTimeout,
		quota:        opts.Quota,
		observer:     opts.Observer,
	}
	if e.policy.MaxAttempts == 0 {
		e.policy = gateway.ServerPolicy()
	}
	if e.textTimeout <= 0 {
		e.textTimeout = 120 * time.Second
	}
	if e.mediaTimeout <= 0 {
		e.mediaTimeout = 180 * time.Second
	}
	if e.quota == nil {
		e.quota = gateway.NewQuotaMatcher(nil)
	}
	if opts.Logger != nil {
		e.logger = *opts.Logger
	} else {
		e.logger = infra.Logger(zerolog.New(io.Discard))
	}
	return e
}

// Complete runs a text completion with retry.
func (e *Executor) Complete(ctx context.Context, req CompletionRequest) (string, *gateway.Envelope) {
	return run(e, ctx, "complete", e.textTimeout, func(ctx context.Context) (string, error) {
		return e.client.Complete(ctx, req)
	})
}

// GenerateImage runs an image generation with retry under the media timeout.
func (e *Executor) GenerateImage(ctx context.Context, prompt, size string) (string, *gateway.Envelope) {
	return run(e, ctx, "image", e.mediaTimeout, func(ctx context.Context) (string, error) {
		return e.client.GenerateImage(ctx, prompt, size)
	})
}

// Synthesize runs a speech synthesis call with retry under the media timeout.
func (e *Executor) Synthesize(ctx context.Context, input string) (domain.Audio, *gateway.Envelope) {
	return run(e, ctx, "speech", e.mediaTimeout, func(ctx context.Context) (domain.Audio, error) {
		data, mime, err := e.client.Synthesize(ctx, input)
		if err != nil {
			return domain.Audio{}, err
		}
		return domain.Audio{Data: data, MIME: mime}, nil
	})
}

// run wraps a single upstream call with the per-attempt timeout, classifies
// its failures and drives the retry loop. The timer set per attempt is
// released on both paths by the deferred cancel.
func run[T any](e *Executor, ctx context.Context, op string, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, *gateway.Envelope) {
	return gateway.Do(ctx, e.policy, func(ctx context.Context, attempt int) (T, *gateway.Envelope) {
		if e.observer != nil {
			e.observer.RecordAttempt(op)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result, err := fn(attemptCtx)
		if err == nil {
			return result, nil
		}

		env := e.classify(err)
		e.logger.Warn().
			Str("operation", op).
			Int("attempt", attempt).
			Str("kind", string(env.Kind)).
			Bool("retryable", env.Retryable).
			Int("status", env.Status).
			Msg("upstream: attempt failed")

		var zero T
		return zero, env
	})
}

func (e *Executor) classify(err error) *gateway.Envelope {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return gateway.ClassifyStatus(apiErr.Status, apiErr.Message, e.quota)
	}
	return gateway.ClassifyTransport(err)
}
