package screenplay

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"moviegen/internal/domain"
	"moviegen/internal/gateway"
	"moviegen/internal/upstream"
)

// MaxConcepts bounds a single batch request.
const MaxConcepts = 5

// Concepts requests count independent concept summaries in one upstream call.
// count must already be within [1, MaxConcepts].
func (a *Adapter) Concepts(ctx context.Context, count int) ([]domain.Concept, *gateway.Envelope) {
	prompt := fmt.Sprintf(
		`Invent %d distinct action movie concepts. Respond strictly as JSON: {"movies":[{"title":string,"plot":string}]}. Each plot is two sentences.`,
		count)

	raw, env := a.completer.Complete(ctx, upstream.CompletionRequest{
		System:       systemRole,
		Prompt:       prompt,
		Temperature:  0.9,
		MaxTokens:    900,
		JSONResponse: true,
	})
	if env != nil {
		return nil, env
	}
	return NormalizeConcepts(raw), nil
}

// NormalizeConcepts folds the upstream's loosely shaped JSON into one
// list-of-concepts result. Tolerated shapes: a bare array, an object
// wrapping an array under "movies", or a single bare object. Anything else,
// including malformed JSON, yields an empty list rather than an error.
func NormalizeConcepts(raw string) []domain.Concept {
	fragment := extractJSONFragment(raw)
	if fragment == "" || !gjson.Valid(fragment) {
		return []domain.Concept{}
	}

	parsed := gjson.Parse(fragment)
	switch {
	case parsed.IsArray():
		return conceptsFromArray(parsed)
	case parsed.IsObject():
		if movies := parsed.Get("movies"); movies.IsArray() {
			return conceptsFromArray(movies)
		}
		if c, ok := conceptFromObject(parsed); ok {
			return []domain.Concept{c}
		}
	}
	return []domain.Concept{}
}

func conceptsFromArray(arr gjson.Result) []domain.Concept {
	concepts := []domain.Concept{}
	arr.ForEach(func(_, item gjson.Result) bool {
		if c, ok := conceptFromObject(item); ok {
			concepts = append(concepts, c)
		}
		return true
	})
	return concepts
}

func conceptFromObject(obj gjson.Result) (domain.Concept, bool) {
	if !obj.IsObject() {
		return domain.Concept{}, false
	}
	title := strings.TrimSpace(obj.Get("title").String())
	plot := strings.TrimSpace(obj.Get("plot").String())
	if title == "" && plot == "" {
		return domain.Concept{}, false
	}
	return domain.Concept{Title: StripQuotes(title), Plot: plot}, true
}

// extractJSONFragment trims markdown code fences and any prose around the
// outermost JSON value. Models wrap structured output unpredictably.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
