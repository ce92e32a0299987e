// Package screenplay maps typed concept parameters onto upstream text
// generation calls and normalizes the results.
package screenplay

import (
	"context"
	"fmt"
	"strings"

	"moviegen/internal/domain"
	"moviegen/internal/gateway"
	"moviegen/internal/upstream"
)

// Completer is the slice of the upstream executor the text adapters need.
type Completer interface {
	Complete(ctx context.Context, req upstream.CompletionRequest) (string, *gateway.Envelope)
}

// Adapter produces titles, plots, trailer scripts, poster descriptions and
// batch concepts. Each method issues at most one upstream call, except Plot,
// which falls back to a second independent title call when the generated text
// carries no title marker.
type Adapter struct {
	completer Completer
}

// NewAdapter wraps a completer.
func NewAdapter(completer Completer) *Adapter {
	return &Adapter{completer: completer}
}

const systemRole = "You are a screenwriter of gloriously over-the-top action movies. Answer with the requested content only, no commentary."

// Title generates a short single-line title, stripped of surrounding quotes.
func (a *Adapter) Title(ctx context.Context, p domain.ConceptParams) (string, *gateway.Envelope) {
	prompt := fmt.Sprintf(
		"Invent a punchy title for an action movie about a former %s in %s who takes on a %s after %s. Reply with the title alone on a single line.",
		p.FormerProfession, p.Setting, p.Villain, p.PlotTrigger)

	raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
		System:      systemRole,
		Prompt:      prompt,
		Temperature: 0.9,
		MaxTokens:   60,
	})
	if env != nil {
		return "", env
	}
	return StripQuotes(firstLine(raw)), nil
}

// Plot generates a long-form plot. With an explicit title the upstream is
// asked for the body only. Without one, the upstream is asked to prefix its
// output with a TITLE: marker line; if the marker is missing (a normal
// outcome, the heuristic is best-effort) a second independent title call is
// made using the plot as context.
func (a *Adapter) Plot(ctx context.Context, p domain.ConceptParams, title string) (domain.Plot, *gateway.Envelope) {
	title = strings.TrimSpace(title)
	setup := fmt.Sprintf(
		"an action movie about a former %s in %s who takes on a %s after %s",
		p.FormerProfession, p.Setting, p.Villain, p.PlotTrigger)

	if title != "" {
		raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
			System:      systemRole,
			Prompt:      fmt.Sprintf("Write a three-paragraph plot summary for %s, titled %q.", setup, title),
			Temperature: 0.8,
			MaxTokens:   700,
		})
		if env != nil {
			return domain.Plot{}, env
		}
		return domain.Plot{Title: title, Body: strings.TrimSpace(raw)}, nil
	}

	raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
		System:      systemRole,
		Prompt:      fmt.Sprintf("Write a three-paragraph plot summary for %s. Start your reply with a line of the form 'TITLE: <the title>' followed by the summary.", setup),
		Temperature: 0.8,
		MaxTokens:   700,
	})
	if env != nil {
		return domain.Plot{}, env
	}

	if parsedTitle, body, ok := SplitTitleMarker(raw); ok {
		return domain.Plot{Title: parsedTitle, Body: body}, nil
	}

	body := strings.TrimSpace(raw)
	derived, env := a.titleFromPlot(ctx, body)
	if env != nil {
		return domain.Plot{}, env
	}
	return domain.Plot{Title: derived, Body: body}, nil
}

func (a *Adapter) titleFromPlot(ctx context.Context, plot string) (string, *gateway.Envelope) {
	raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
		System:      systemRole,
		Prompt:      "Invent a punchy action movie title for this plot. Reply with the title alone on a single line.\n\n" + plot,
		Temperature: 0.9,
		MaxTokens:   60,
	})
	if env != nil {
		return "", env
	}
	return StripQuotes(firstLine(raw)), nil
}

// TrailerScript generates free-text alternating narration, dialogue and
// direction lines. No structure is machine-checked.
func (a *Adapter) TrailerScript(ctx context.Context, title, plot string) (string, *gateway.Envelope) {
	prompt := fmt.Sprintf(
		"Write a movie trailer voiceover script for %q. Alternate gravelly narrator lines, snippets of hero dialogue, and bracketed sound directions like [EXPLOSION]. Plot:\n\n%s",
		title, plot)

	raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
		System:      systemRole,
		Prompt:      prompt,
		Temperature: 0.9,
		MaxTokens:   700,
	})
	if env != nil {
		return "", env
	}
	return strings.TrimSpace(raw), nil
}

// PosterDescription generates a tagline followed by a visual description.
// The raw text passes through untouched.
func (a *Adapter) PosterDescription(ctx context.Context, title, plot string) (string, *gateway.Envelope) {
	prompt := fmt.Sprintf(
		"Describe the theatrical one-sheet poster for %q: open with a tagline, then describe the visual composition. Plot:\n\n%s",
		title, plot)

	raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
		System:      systemRole,
		Prompt:      prompt,
		Temperature: 0.8,
		MaxTokens:   500,
	})
	if env != nil {
		return "", env
	}
	return strings.TrimSpace(raw), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
