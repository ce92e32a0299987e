package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"moviegen/internal/domain"
)

const defaultFetchTimeout = 30 * time.Second

// Options configures the gateway client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Policy     Policy
	Breaker    *Breaker
	Logger     *zerolog.Logger
}

// Client is the only surface the rest of the application touches to reach the
// gateway server. It hides retry, backoff and circuit-breaker mechanics
// behind one call per action.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     Policy
	breaker    *Breaker
	logger     zerolog.Logger
}

// NewClient constructs a gateway client. A nil breaker gets a fresh one with
// default thresholds; a nil HTTP client gets the default fetch timeout.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	policy := opts.Policy
	if policy.MaxAttempts == 0 {
		policy = ClientPolicy()
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = NewBreaker(BreakerOptions{})
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		policy:     policy,
		breaker:    breaker,
		logger:     logger,
	}, nil
}

// Available reports whether the client would currently attempt a call. An
// open breaker whose cooldown has elapsed closes here.
func (c *Client) Available() bool {
	return c.breaker.Allow()
}

// Reset forces the circuit breaker back to closed.
func (c *Client) Reset() {
	c.breaker.Reset()
}

// GenerateTitle produces a short single-line movie title.
func (c *Client) GenerateTitle(ctx context.Context, p domain.ConceptParams) (string, error) {
	var out struct {
		Title string `json:"title"`
	}
	if err := c.callJSON(ctx, ActionTitle, conceptFields(p), &out); err != nil {
		return "", err
	}
	return out.Title, nil
}

// GeneratePlot produces a long-form plot. When title is empty the server
// derives one from the generated plot.
func (c *Client) GeneratePlot(ctx context.Context, p domain.ConceptParams, title string) (*domain.Plot, error) {
	fields := conceptFields(p)
	if strings.TrimSpace(title) != "" {
		fields["title"] = title
	}
	var out domain.Plot
	if err := c.callJSON(ctx, ActionPlot, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateTrailerScript produces free-text narration/dialogue/direction lines.
func (c *Client) GenerateTrailerScript(ctx context.Context, title, plot string) (string, error) {
	var out struct {
		Script string `json:"script"`
	}
	fields := map[string]any{"title": title, "plot": plot}
	if err := c.callJSON(ctx, ActionTrailerScript, fields, &out); err != nil {
		return "", err
	}
	return out.Script, nil
}

// GeneratePosterDescription produces a tagline plus visual description.
func (c *Client) GeneratePosterDescription(ctx context.Context, title, plot string) (string, error) {
	var out struct {
		Description string `json:"description"`
	}
	fields := map[string]any{"title": title, "plot": plot}
	if err := c.callJSON(ctx, ActionPosterDescription, fields, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

// GeneratePosterImage returns a URL referencing a generated poster image.
func (c *Client) GeneratePosterImage(ctx context.Context, title, plot string) (string, error) {
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	fields := map[string]any{"title": title, "plot": plot}
	if err := c.callJSON(ctx, ActionPosterImage, fields, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// GenerateTrailerAudio synthesizes trailer voiceover audio from a script.
func (c *Client) GenerateTrailerAudio(ctx context.Context, script string) (*domain.Audio, error) {
	res, err := c.call(ctx, ActionTrailerAudio, map[string]any{"script": script})
	if err != nil {
		return nil, err
	}
	mime := res.contentType
	if mime == "" {
		mime = "audio/mpeg"
	}
	return &domain.Audio{Data: res.body, MIME: mime}, nil
}

// GenerateConcepts requests count independent concept summaries in one call.
func (c *Client) GenerateConcepts(ctx context.Context, count int) ([]domain.Concept, error) {
	var out struct {
		Concepts []domain.Concept `json:"concepts"`
	}
	if err := c.callJSON(ctx, ActionConcepts, map[string]any{"count": count}, &out); err != nil {
		return nil, err
	}
	return out.Concepts, nil
}

type callResult struct {
	body        []byte
	contentType string
}

func (c *Client) callJSON(ctx context.Context, action string, fields map[string]any, out any) error {
	res, err := c.call(ctx, action, fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return &Envelope{Kind: KindUpstreamFailure, Message: "malformed gateway response: " + err.Error()}
	}
	return nil
}

// call runs one logical action call: breaker pre-check, then sequential
// attempts with backoff, updating breaker state from each outcome.
func (c *Client) call(ctx context.Context, action string, fields map[string]any) (*callResult, error) {
	if !c.breaker.Allow() {
		c.logger.Warn().Str("action", action).Msg("gateway: circuit open, failing fast")
		return nil, &Envelope{Kind: KindUnavailable, Message: domain.ErrUnavailable.Error()}
	}

	payload := map[string]any{"action": action}
	for k, v := range fields {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Envelope{Kind: KindInvalidInput, Message: "encode request: " + err.Error()}
	}

	var last *Envelope
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		res, env := c.do(ctx, body)
		if env == nil {
			c.breaker.RecordSuccess()
			return res, nil
		}
		last = env
		c.logger.Warn().
			Str("action", action).
			Int("attempt", attempt).
			Str("kind", string(env.Kind)).
			Bool("retryable", env.Retryable).
			Msg("gateway: attempt failed")

		switch {
		case env.Kind == KindRateLimited || env.Kind == KindQuotaExceeded:
			// Billing-sensitive: never retried, and the breaker opens
			// immediately regardless of the failure counter.
			c.breaker.Trip()
			return nil, env
		case env.Kind == KindTimeout:
			if c.breaker.RecordTimeout() {
				c.logger.Warn().Str("action", action).Msg("gateway: timeout threshold reached, circuit open")
				return nil, env
			}
		case !env.Retryable:
			// Caller mistakes and config errors say nothing about service
			// health, so they do not touch the failure counter.
			return nil, env
		}

		if attempt == c.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &Envelope{Kind: KindTimeout, Message: "caller context done: " + ctx.Err().Error(), Retryable: true}
		case <-time.After(c.policy.Delay(attempt)):
		}
	}

	if c.breaker.RecordFailure() {
		c.logger.Warn().Str("action", action).Msg("gateway: failure threshold reached, circuit open")
	}
	return nil, last
}

// do performs a single HTTP attempt and maps the outcome to an envelope.
func (c *Client) do(ctx context.Context, body []byte) (*callResult, *Envelope) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &Envelope{Kind: KindInvalidInput, Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Envelope{Kind: KindTransient, Message: "read response: " + err.Error(), Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		var wire WireError
		if err := json.Unmarshal(data, &wire); err == nil && wire.ErrorType != "" {
			return nil, FromWire(wire, resp.StatusCode)
		}
		return nil, ClassifyStatus(resp.StatusCode, strings.TrimSpace(string(data)), nil)
	}

	return &callResult{body: data, contentType: resp.Header.Get("Content-Type")}, nil
}

func conceptFields(p domain.ConceptParams) map[string]any {
	return map[string]any{
		"formerProfession": p.FormerProfession,
		"setting":          p.Setting,
		"villain":          p.Villain,
		"plotTrigger":      p.PlotTrigger,
	}
}
