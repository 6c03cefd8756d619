// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai is the client for the generative-text service. It exposes
// single-shot generation and a lazy streamed variant behind the Generator
// interface so callers can substitute a fake in tests.
package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/litgap/internal/apperr"
	"github.com/pdiddy/litgap/pkg/types"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const serviceName = "generative-text service"

// geminiAPIBase is the API root. Package-level var for test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// GenerationConfig carries the sampling parameters of one call.
type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

// Generator produces text for a prompt.
type Generator interface {
	// Generate returns the whole response text.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)

	// GenerateStream returns the response as an ordered sequence of text
	// pieces. No request is made until the sequence is ranged over.
	GenerateStream(ctx context.Context, prompt string, cfg GenerationConfig) iter.Seq2[string, error]
}

// GeminiClient calls the Gemini generateContent endpoints.
type GeminiClient struct {
	APIKey    string
	Model     string
	BaseURL   string
	UserAgent string
	Client    *http.Client
	// Timeout bounds a whole Generate call. Streams are bounded only by
	// their context.
	Timeout time.Duration
}

// NewGeminiClient builds a client from configuration. A missing API key is a
// configuration error.
func NewGeminiClient(cfg types.GenAIConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperr.Configuration("GEMINI_API_KEY", "set it in the environment, .env, or .secrets/gemini-api-key")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &GeminiClient{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Transport: transport},
		Timeout:   timeout,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// text concatenates the parts of the first candidate.
func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// failure reports an error carried inside a response payload.
func (r geminiResponse) failure() error {
	if r.Error != nil {
		return apperr.Upstream(serviceName, r.Error.Code, "%s", r.Error.Message)
	}
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return apperr.Upstream(serviceName, 0, "prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	return nil
}

// Generate calls :generateContent and returns the concatenated text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, "generateContent", prompt, cfg)
	if err != nil {
		return "", err
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return "", apperr.WrapUpstream(serviceName, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.WrapUpstream(serviceName, "reading response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Upstream(serviceName, resp.StatusCode, "%s", truncate(body))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", apperr.WrapUpstream(serviceName, "decoding response", err)
	}
	if err := gr.failure(); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 {
		return "", apperr.Upstream(serviceName, 0, "response has no candidates")
	}
	text := gr.text()
	if text == "" {
		return "", apperr.Upstream(serviceName, 0, "response has no text (finish reason %s)", gr.Candidates[0].FinishReason)
	}
	return text, nil
}

// GenerateStream calls :streamGenerateContent with server-sent events and
// yields each text piece in arrival order. The first error ends the sequence.
func (c *GeminiClient) GenerateStream(ctx context.Context, prompt string, cfg GenerationConfig) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req, err := c.newRequest(ctx, "streamGenerateContent?alt=sse", prompt, cfg)
		if err != nil {
			yield("", err)
			return
		}

		resp, err := c.client().Do(req)
		if err != nil {
			yield("", apperr.WrapUpstream(serviceName, "request failed", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			yield("", apperr.Upstream(serviceName, resp.StatusCode, "%s", truncate(body)))
			return
		}

		for piece, err := range parseSSE(resp.Body) {
			if !yield(piece, err) || err != nil {
				return
			}
		}
	}
}

// parseSSE decodes "data:" lines of an event stream into text pieces.
func parseSSE(body io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			data, ok := strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}
			data = strings.TrimSpace(data)
			if data == "" || data == "[DONE]" {
				continue
			}

			var gr geminiResponse
			if err := json.Unmarshal([]byte(data), &gr); err != nil {
				yield("", apperr.WrapUpstream(serviceName, "decoding stream event", err))
				return
			}
			if err := gr.failure(); err != nil {
				yield("", err)
				return
			}
			if !yield(gr.text(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", apperr.WrapUpstream(serviceName, "reading stream", err))
		}
	}
}

func (c *GeminiClient) newRequest(ctx context.Context, method, prompt string, cfg GenerationConfig) (*http.Request, error) {
	if c.APIKey == "" {
		return nil, apperr.Configuration("GEMINI_API_KEY", "no API key configured")
	}

	payload, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	base := c.BaseURL
	if base == "" {
		base = geminiAPIBase
	}
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	endpoint := strings.TrimRight(base, "/") + "/models/" + model + ":" + method

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

func (c *GeminiClient) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		return s[:512] + "..."
	}
	return s
}
