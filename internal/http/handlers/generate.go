package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"moviegen/internal/domain"
	"moviegen/internal/gateway"
	"moviegen/internal/storage/postgres"
)

type generateRequest struct {
	Action string `json:"action"`
	domain.ConceptParams
	Title  string `json:"title"`
	Plot   string `json:"plot"`
	Script string `json:"script"`
	Count  int    `json:"count"`
}

const defaultConceptCount = 3

// Generate is the single action router: it validates the named action and its
// parameters, dispatches to the matching adapter under the per-class
// deadline, and shapes the response. All failures share the envelope shape.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.finish(w, "invalid", start, nil, gateway.InvalidInput("invalid payload"))
		return
	}
	action := strings.TrimSpace(req.Action)
	if !gateway.KnownAction(action) {
		// Rejected before any upstream call, and labeled "unknown" so the
		// metric cardinality stays bounded.
		a.finish(w, "unknown", start, nil, gateway.InvalidInput("unknown action %q", req.Action))
		return
	}
	if a.Screenplay == nil {
		a.finish(w, action, start, nil, gateway.ConfigError(domain.ErrMissingCredential.Error()))
		return
	}

	deadline := a.TextDeadline
	if gateway.MediaAction(action) {
		deadline = a.MediaDeadline
	}
	if deadline <= 0 {
		deadline = 150 * time.Second
	}
	// The deadline bounds the response, not the upstream call: an attempt
	// still in flight when it fires is abandoned, and its eventual result
	// discarded with it.
	ctx, cancel := context.WithTimeout(r.Context(), deadline)
	defer cancel()

	payload, audio, env := a.dispatch(ctx, action, req)
	switch {
	case env != nil:
		a.finish(w, action, start, nil, env)
	case audio != nil:
		a.finishAudio(w, action, start, audio)
	default:
		a.finish(w, action, start, payload, nil)
	}
}

func (a *App) dispatch(ctx context.Context, action string, req generateRequest) (any, *domain.Audio, *gateway.Envelope) {
	switch action {
	case gateway.ActionTitle:
		if !req.ConceptParams.Complete() {
			return nil, nil, gateway.InvalidInput("formerProfession, setting, villain and plotTrigger are required")
		}
		title, env := a.Screenplay.Title(ctx, req.ConceptParams)
		if env != nil {
			return nil, nil, env
		}
		return map[string]string{"title": title}, nil, nil

	case gateway.ActionPlot:
		if !req.ConceptParams.Complete() {
			return nil, nil, gateway.InvalidInput("formerProfession, setting, villain and plotTrigger are required")
		}
		plot, env := a.Screenplay.Plot(ctx, req.ConceptParams, req.Title)
		if env != nil {
			return nil, nil, env
		}
		return plot, nil, nil

	case gateway.ActionTrailerScript:
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Plot) == "" {
			return nil, nil, gateway.InvalidInput("title and plot are required")
		}
		script, env := a.Screenplay.TrailerScript(ctx, req.Title, req.Plot)
		if env != nil {
			return nil, nil, env
		}
		return map[string]string{"script": script}, nil, nil

	case gateway.ActionPosterDescription:
		if strings.TrimSpace(req.Title) == "" {
			return nil, nil, gateway.InvalidInput("title is required")
		}
		description, env := a.Screenplay.PosterDescription(ctx, req.Title, req.Plot)
		if env != nil {
			return nil, nil, env
		}
		return map[string]string{"description": description}, nil, nil

	case gateway.ActionPosterImage:
		url, env := a.Poster.PosterImage(ctx, req.Title, req.Plot)
		if env != nil {
			return nil, nil, env
		}
		return map[string]string{"imageUrl": url}, nil, nil

	case gateway.ActionTrailerAudio:
		audio, env := a.Voice.TrailerAudio(ctx, req.Script)
		if env != nil {
			return nil, nil, env
		}
		return nil, &audio, nil

	case gateway.ActionConcepts:
		count := req.Count
		if count == 0 {
			count = defaultConceptCount
		}
		if count < 1 || count > 5 {
			return nil, nil, gateway.InvalidInput("count must be between 1 and 5")
		}
		concepts, env := a.Screenplay.Concepts(ctx, count)
		if env != nil {
			return nil, nil, env
		}
		return map[string]any{"concepts": concepts}, nil, nil
	}
	return nil, nil, gateway.InvalidInput("unknown action %q", action)
}

func (a *App) finish(w http.ResponseWriter, action string, start time.Time, payload any, env *gateway.Envelope) {
	if env != nil {
		a.Logger.Warn().
			Str("action", action).
			Str("kind", string(env.Kind)).
			Int("upstream_status", env.Status).
			Dur("elapsed", time.Since(start)).
			Msg("generate failed")
		a.observe(action, start, env)
		a.fail(w, env)
		return
	}
	a.observe(action, start, nil)
	a.json(w, http.StatusOK, payload)
}

func (a *App) finishAudio(w http.ResponseWriter, action string, start time.Time, audio *domain.Audio) {
	a.observe(action, start, nil)
	w.Header().Set("Content-Type", audio.MIME)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Data)
}

func (a *App) observe(action string, start time.Time, env *gateway.Envelope) {
	elapsed := time.Since(start)
	outcome := "success"
	errorKind := ""
	if env != nil {
		outcome = "failure"
		errorKind = string(env.Kind)
	}
	if a.Metrics != nil {
		a.Metrics.Requests.WithLabelValues(action, outcome).Inc()
		a.Metrics.RequestDuration.WithLabelValues(action).Observe(elapsed.Seconds())
	}
	if a.Audit != nil {
		// The request context may already be past its deadline; the audit
		// write gets its own short one.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.Audit.Record(ctx, postgres.GenerationRecord{
			Action:    action,
			Outcome:   outcome,
			ErrorKind: errorKind,
			Latency:   elapsed,
		}); err != nil {
			a.Logger.Warn().Err(err).Msg("audit record failed")
		}
	}
}
