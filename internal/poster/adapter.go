// Package poster maps concept titles onto upstream image generation calls.
package poster

import (
	"context"
	"fmt"
	"strings"

	"moviegen/internal/gateway"
)

// ImageGenerator is the slice of the upstream executor the poster adapter needs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, *gateway.Envelope)
}

// Adapter turns a concept into a generated one-sheet poster image.
type Adapter struct {
	generator ImageGenerator
}

// NewAdapter wraps an image generator.
func NewAdapter(generator ImageGenerator) *Adapter {
	return &Adapter{generator: generator}
}

// PosterImage generates a poster and returns the hosted image URL. The title
// is mandatory; nothing is sent upstream without it.
func (a *Adapter) PosterImage(ctx context.Context, title, plot string) (string, *gateway.Envelope) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", gateway.InvalidInput("title is required")
	}

	prompt := fmt.Sprintf(
		"Theatrical one-sheet movie poster for the action film %q. Dramatic lighting, bold title treatment, gritty 1990s blockbuster style.",
		title)
	if plot = strings.TrimSpace(plot); plot != "" {
		prompt += " The story: " + plot
	}

	return a.generator.GenerateImage(ctx, prompt, "1024x1792")
}
