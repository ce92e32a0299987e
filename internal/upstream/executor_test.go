package upstream

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"moviegen/internal/gateway"
)

type attemptRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (a *attemptRecorder) RecordAttempt(op string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ops = append(a.ops, op)
}

func (a *attemptRecorder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ops)
}

var fastPolicy = gateway.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffMultiplier: 1}

func newTestExecutor(t *testing.T, respond func(r *http.Request) *http.Response, rec *attemptRecorder) *Executor {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "sk-test",
		BaseURL:    "https://upstream.test/v1",
		HTTPClient: &http.Client{Transport: roundTripFunc(respond)},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	opts := ExecutorOptions{
		Client: client,
		Policy: fastPolicy,
	}
	if rec != nil {
		opts.Observer = rec
	}
	return NewExecutor(opts)
}

type roundTripFunc func(r *http.Request) *http.Response

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r), nil
}

// blockUntilDeadline simulates an upstream that never answers within the
// attempt deadline.
type blockUntilDeadline struct{}

func (blockUntilDeadline) RoundTrip(r *http.Request) (*http.Response, error) {
	<-r.Context().Done()
	return nil, r.Context().Err()
}

func TestExecutorRetriesServerErrorThenSucceeds(t *testing.T) {
	rec := &attemptRecorder{}
	calls := 0
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		calls++
		if calls == 1 {
			return jsonResponse(500, `{"error":{"message":"internal error"}}`)
		}
		return jsonResponse(200, `{"choices":[{"message":{"content":"Steel Vengeance"}}]}`)
	}, rec)

	got, env := exec.Complete(context.Background(), CompletionRequest{Prompt: "title"})
	if env != nil {
		t.Fatalf("unexpected envelope: %v", env)
	}
	if got != "Steel Vengeance" {
		t.Fatalf("result = %q", got)
	}
	if rec.count() != 2 {
		t.Fatalf("attempts = %d, want 2", rec.count())
	}
}

func TestExecutorStopsOnRateLimit(t *testing.T) {
	rec := &attemptRecorder{}
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		return jsonResponse(429, `{"error":{"message":"Rate limit reached"}}`)
	}, rec)

	_, env := exec.Complete(context.Background(), CompletionRequest{Prompt: "title"})
	if env == nil || env.Kind != gateway.KindRateLimited {
		t.Fatalf("envelope = %v, want rate_limited", env)
	}
	if rec.count() != 1 {
		t.Fatalf("attempts = %d, want exactly 1 for a rate limit", rec.count())
	}
}

func TestExecutorQuotaMessageStopsRegardlessOfStatus(t *testing.T) {
	rec := &attemptRecorder{}
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		return jsonResponse(500, `{"error":{"message":"You exceeded your current quota"}}`)
	}, rec)

	_, env := exec.Complete(context.Background(), CompletionRequest{Prompt: "title"})
	if env == nil || env.Kind != gateway.KindRateLimited {
		t.Fatalf("envelope = %v, want rate_limited from quota vocabulary", env)
	}
	if rec.count() != 1 {
		t.Fatalf("attempts = %d, want 1", rec.count())
	}
}

func TestExecutorExhaustsAttemptsOnPersistentServerError(t *testing.T) {
	rec := &attemptRecorder{}
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		return jsonResponse(503, `{"error":{"message":"overloaded"}}`)
	}, rec)

	_, env := exec.Complete(context.Background(), CompletionRequest{Prompt: "title"})
	if env == nil || env.Kind != gateway.KindUpstreamFailure {
		t.Fatalf("envelope = %v, want upstream_failure", env)
	}
	if env.Status != 503 || env.UpstreamMessage != "overloaded" {
		t.Fatalf("diagnostics lost: status=%d message=%q", env.Status, env.UpstreamMessage)
	}
	if rec.count() != fastPolicy.MaxAttempts {
		t.Fatalf("attempts = %d, want %d", rec.count(), fastPolicy.MaxAttempts)
	}
}

func TestExecutorDoesNotRetryBadRequest(t *testing.T) {
	rec := &attemptRecorder{}
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		return jsonResponse(400, `{"error":{"message":"prompt too long"}}`)
	}, rec)

	_, env := exec.Complete(context.Background(), CompletionRequest{Prompt: "title"})
	if env == nil || env.Kind != gateway.KindUpstreamFailure || env.Retryable {
		t.Fatalf("envelope = %v, want non-retryable upstream_failure", env)
	}
	if rec.count() != 1 {
		t.Fatalf("attempts = %d, want 1", rec.count())
	}
}

func TestExecutorPerAttemptTimeout(t *testing.T) {
	rec := &attemptRecorder{}
	client, err := NewClient(Options{
		APIKey:     "sk-test",
		BaseURL:    "https://upstream.test/v1",
		HTTPClient: &http.Client{Transport: blockUntilDeadline{}},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	exec := NewExecutor(ExecutorOptions{
		Client:      client,
		Policy:      gateway.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, BackoffMultiplier: 1},
		TextTimeout: 10 * time.Millisecond,
		Observer:    rec,
	})

	start := time.Now()
	_, env := exec.Complete(context.Background(), CompletionRequest{Prompt: "title"})
	if env == nil || env.Kind != gateway.KindTimeout {
		t.Fatalf("envelope = %v, want timeout", env)
	}
	if rec.count() != 2 {
		t.Fatalf("attempts = %d, want 2 (timeouts are retryable server-side)", rec.count())
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("per-attempt deadline not applied, took %v", elapsed)
	}
}

func TestExecutorOperationLabels(t *testing.T) {
	rec := &attemptRecorder{}
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			return jsonResponse(200, `{"choices":[{"message":{"content":"ok"}}]}`)
		case strings.HasSuffix(r.URL.Path, "/images/generations"):
			return jsonResponse(200, `{"data":[{"url":"https://img.test/p.png"}]}`)
		default:
			return &http.Response{
				StatusCode: 200,
				Header:     http.Header{"Content-Type": []string{"audio/mpeg"}},
				Body:       io.NopCloser(strings.NewReader("bytes")),
			}
		}
	}, rec)

	ctx := context.Background()
	if _, env := exec.Complete(ctx, CompletionRequest{Prompt: "x"}); env != nil {
		t.Fatalf("Complete: %v", env)
	}
	if _, env := exec.GenerateImage(ctx, "poster", ""); env != nil {
		t.Fatalf("GenerateImage: %v", env)
	}
	if _, env := exec.Synthesize(ctx, "script"); env != nil {
		t.Fatalf("Synthesize: %v", env)
	}

	want := []string{"complete", "image", "speech"}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.ops) != 3 {
		t.Fatalf("ops = %v", rec.ops)
	}
	for i, op := range want {
		if rec.ops[i] != op {
			t.Fatalf("op[%d] = %q, want %q", i, rec.ops[i], op)
		}
	}
}

func TestExecutorSynthesizeReturnsAudio(t *testing.T) {
	exec := newTestExecutor(t, func(r *http.Request) *http.Response {
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"audio/mpeg"}},
			Body:       io.NopCloser(strings.NewReader("voice-bytes")),
		}
	}, nil)

	audio, env := exec.Synthesize(context.Background(), "In a world...")
	if env != nil {
		t.Fatalf("Synthesize: %v", env)
	}
	if audio.MIME != "audio/mpeg" || string(audio.Data) != "voice-bytes" {
		t.Fatalf("audio = %+v", audio)
	}
}
