// Package gemini implements the Google Gemini LLM and embedding providers.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/edusage/sage"
)

var baseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini implements sage.Provider for Google Gemini models.
type Gemini struct {
	apiKey     string
	model      string
	httpClient *http.Client

	temperature float64
	topP        float64
}

var _ sage.Provider = (*Gemini)(nil)

// Option configures a Gemini provider.
type Option func(*Gemini)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gemini) { g.httpClient = c }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Gemini) { g.temperature = t }
}

// WithTopP sets nucleus sampling.
func WithTopP(p float64) Option {
	return func(g *Gemini) { g.topP = p }
}

// New creates a new Gemini chat provider with functional options.
func New(apiKey, model string, opts ...Option) *Gemini {
	g := &Gemini{
		apiKey:      apiKey,
		model:       model,
		httpClient:  &http.Client{},
		temperature: 0.1,
		topP:        0.9,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns "gemini".
func (g *Gemini) Name() string { return "gemini" }

// Generate sends a non-streaming generateContent call and returns the
// concatenated text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature": g.temperature,
			"topP":        g.topP,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, g.model, g.apiKey)
	respBody, err := postJSON(ctx, g.httpClient, url, body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("gemini: parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}

// Embedding embeds texts with a Gemini embedding model at a fixed
// dimensionality.
type Embedding struct {
	apiKey     string
	model      string
	dims       int
	httpClient *http.Client
}

// NewEmbedding creates a new Gemini embedding provider.
func NewEmbedding(apiKey, model string, dims int) *Embedding {
	return &Embedding{
		apiKey:     apiKey,
		model:      model,
		dims:       dims,
		httpClient: &http.Client{},
	}
}

// Name returns "gemini".
func (e *Embedding) Name() string { return "gemini" }

// Dimensions returns the configured embedding dimensionality.
func (e *Embedding) Dimensions() int { return e.dims }

// Embed embeds each text sequentially and returns the embedding vectors.
// The signature matches ingest.EmbedFunc so e.Embed can be passed directly.
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", baseURL, e.model, e.apiKey)

	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		body := map[string]any{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
			"outputDimensionality": e.dims,
		}

		respBody, err := postJSON(ctx, e.httpClient, url, body)
		if err != nil {
			return nil, err
		}

		var parsed embedResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("gemini: parse embed response: %w", err)
		}
		if parsed.Embedding == nil {
			return nil, fmt.Errorf("gemini: missing embedding.values in response")
		}

		vec := make([]float32, len(parsed.Embedding.Values))
		for i, v := range parsed.Embedding.Values {
			vec[i] = float32(v)
		}
		embeddings = append(embeddings, vec)
	}
	return embeddings, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// ---- Response types ----

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type embedResponse struct {
	Embedding *struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}
