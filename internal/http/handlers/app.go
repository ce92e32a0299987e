package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"moviegen/internal/gateway"
	"moviegen/internal/infra"
	"moviegen/internal/poster"
	"moviegen/internal/screenplay"
	"moviegen/internal/storage/postgres"
	"moviegen/internal/voice"
)

// Auditor records request outcomes. postgres.AuditRepo satisfies it; a nil
// auditor disables the trail.
type Auditor interface {
	Record(ctx context.Context, rec postgres.GenerationRecord) error
}

// App is the handler container for the gateway server.
type App struct {
	Logger     infra.Logger
	Screenplay *screenplay.Adapter
	Voice      *voice.Adapter
	Poster     *poster.Adapter
	Audit      Auditor
	Metrics    *infra.Metrics

	// Wall-clock deadlines for one whole request, per action class.
	TextDeadline  time.Duration
	MediaDeadline time.Duration
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, env *gateway.Envelope) {
	a.json(w, env.HTTPStatus(), env.Wire())
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
