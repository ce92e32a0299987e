package poster

import (
	"context"
	"strings"
	"testing"

	"moviegen/internal/gateway"
)

type fakeGenerator struct {
	prompts []string
	sizes   []string
	url     string
	env     *gateway.Envelope
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt, size string) (string, *gateway.Envelope) {
	f.prompts = append(f.prompts, prompt)
	f.sizes = append(f.sizes, size)
	return f.url, f.env
}

func TestPosterImage(t *testing.T) {
	fake := &fakeGenerator{url: "https://img.test/poster.png"}
	adapter := NewAdapter(fake)

	url, env := adapter.PosterImage(context.Background(), "Steel Vengeance", "A former Navy SEAL returns.")
	if env != nil {
		t.Fatalf("PosterImage: %v", env)
	}
	if url != "https://img.test/poster.png" {
		t.Fatalf("url = %q", url)
	}
	if len(fake.prompts) != 1 {
		t.Fatalf("calls = %d, want 1", len(fake.prompts))
	}
	prompt := fake.prompts[0]
	if !strings.Contains(prompt, `"Steel Vengeance"`) {
		t.Fatalf("prompt missing title: %q", prompt)
	}
	if !strings.Contains(prompt, "A former Navy SEAL returns.") {
		t.Fatalf("prompt missing plot: %q", prompt)
	}
	if fake.sizes[0] != "1024x1792" {
		t.Fatalf("size = %q, want portrait", fake.sizes[0])
	}
}

func TestPosterImageWithoutPlot(t *testing.T) {
	fake := &fakeGenerator{url: "https://img.test/poster.png"}
	adapter := NewAdapter(fake)

	if _, env := adapter.PosterImage(context.Background(), "Steel Vengeance", "  "); env != nil {
		t.Fatalf("PosterImage: %v", env)
	}
	if strings.Contains(fake.prompts[0], "The story:") {
		t.Fatalf("empty plot leaked into prompt: %q", fake.prompts[0])
	}
}

func TestPosterImageRequiresTitle(t *testing.T) {
	fake := &fakeGenerator{}
	adapter := NewAdapter(fake)

	_, env := adapter.PosterImage(context.Background(), "   ", "plot")
	if env == nil || env.Kind != gateway.KindInvalidInput {
		t.Fatalf("envelope = %v, want invalid_input", env)
	}
	if len(fake.prompts) != 0 {
		t.Fatal("missing title must not reach the image generator")
	}
}

func TestPosterImagePropagatesEnvelope(t *testing.T) {
	fake := &fakeGenerator{env: &gateway.Envelope{Kind: gateway.KindUpstreamFailure, Retryable: true}}
	adapter := NewAdapter(fake)

	_, env := adapter.PosterImage(context.Background(), "Steel Vengeance", "")
	if env == nil || env.Kind != gateway.KindUpstreamFailure {
		t.Fatalf("envelope = %v, want upstream_failure passed through", env)
	}
}
