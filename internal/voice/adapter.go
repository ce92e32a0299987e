package voice

import (
	"context"
	"strings"

	"moviegen/internal/domain"
	"moviegen/internal/gateway"
)

// Synthesizer is the slice of the upstream executor the audio adapter needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, input string) (domain.Audio, *gateway.Envelope)
}

// Adapter turns free-text trailer scripts into synthesized voiceover audio.
type Adapter struct {
	synthesizer Synthesizer
}

// NewAdapter wraps a synthesizer.
func NewAdapter(synthesizer Synthesizer) *Adapter {
	return &Adapter{synthesizer: synthesizer}
}

// TrailerAudio sanitizes the script and issues one synthesis call. An empty
// script, or one that sanitizes down to nothing, is a caller mistake.
func (a *Adapter) TrailerAudio(ctx context.Context, script string) (domain.Audio, *gateway.Envelope) {
	if strings.TrimSpace(script) == "" {
		return domain.Audio{}, gateway.InvalidInput("script is required")
	}
	prepared := PrepareScript(script)
	if strings.TrimSpace(strings.ReplaceAll(prepared, PauseMarker, "")) == "" {
		return domain.Audio{}, gateway.InvalidInput("script contains nothing speakable")
	}
	return a.synthesizer.Synthesize(ctx, prepared)
}
