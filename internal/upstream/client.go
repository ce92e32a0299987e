package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"moviegen/internal/infra"

	"github.com/rs/zerolog"
)

// Options configures the upstream generative API client.
type Options struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	SpeechModel string
	Voice       string
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client talks to an OpenAI-compatible generative service: chat completions
// for text, image generations for posters, speech synthesis for audio. It
// performs exactly one HTTP call per method; retry lives in the Executor.
type Client struct {
	apiKey      string
	baseURL     string
	textModel   string
	imageModel  string
	speechModel string
	voice       string
	httpClient  *http.Client
	logger      infra.Logger
}

// APIError is an upstream HTTP failure with its raw status and message,
// preserved for classification and diagnostics.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// NewClient constructs an upstream client. The credential is mandatory.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("upstream api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No client-level timeout: each attempt carries its own context
		// deadline sized per action class.
		httpClient = &http.Client{}
	}
	logger := infra.Logger(zerolog.New(io.Discard))
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		textModel:   defaultString(opts.TextModel, "gpt-4o-mini"),
		imageModel:  defaultString(opts.ImageModel, "dall-e-3"),
		speechModel: defaultString(opts.SpeechModel, "tts-1"),
		voice:       defaultString(opts.Voice, "onyx"),
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// CompletionRequest describes one text generation call.
type CompletionRequest struct {
	System       string
	Prompt       string
	Temperature  float64
	MaxTokens    int
	JSONResponse bool
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete runs one chat completion and returns the raw text.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	payload := chatRequest{
		Model:       c.textModel,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.JSONResponse {
		payload.ResponseFormat = &chatFormat{Type: "json_object"}
	}

	var out chatResponse
	if err := c.postJSON(ctx, "/chat/completions", payload, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", &APIError{Status: http.StatusBadGateway, Message: "completion returned no choices"}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// GenerateImage runs one image generation and returns the hosted URL.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	payload := imageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           defaultString(size, "1024x1792"),
		ResponseFormat: "url",
	}

	var out imageResponse
	if err := c.postJSON(ctx, "/images/generations", payload, &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].URL) == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "image generation returned no url"}
	}
	return out.Data[0].URL, nil
}

// Synthesize runs one speech synthesis call and returns the audio bytes with
// their content type.
func (c *Client) Synthesize(ctx context.Context, input string) ([]byte, string, error) {
	payload := speechRequest{
		Model: c.speechModel,
		Input: input,
		Voice: c.voice,
	}

	resp, err := c.post(ctx, "/audio/speech", payload)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", c.decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read audio payload: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}
	return data, mime, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode upstream request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.httpClient.Do(req)
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error.Message}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
