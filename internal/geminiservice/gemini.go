package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DietAdvisor/internal/config"

	"github.com/rs/zerolog"
)

// --- Gemini API Configuration ---
const (
	generateContentPath = "/v1beta/models/%s:generateContent"
	textMimeType        = "text/plain"
	maxErrorBodyBytes   = 4096
)

// ErrNotConfigured is returned when no API key has been supplied.
var ErrNotConfigured = errors.New("gemini: API key is not configured")

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent endpoint. It is safe for
// concurrent use.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient builds a Client from configuration. A missing API key is not an
// error here; GenerateDietPlan reports ErrNotConfigured instead so the rest of
// the service can still start.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateDietPlan asks the model for a diet plan and returns its text
// unchanged. Exactly one request is made; failures are not retried.
func (c *Client) GenerateDietPlan(ctx context.Context, category string, deficiencies []string) (string, error) {
	return c.generateText(ctx, SystemPrompt, BuildDietPlanPrompt(category, deficiencies))
}

// generateText handles the actual HTTP request to the Gemini API
func (c *Client) generateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if !c.Configured() {
		logger.Error().Msg("GEMINI_API_KEY is not set")
		return "", ErrNotConfigured
	}

	payload := GeminiPayload{
		SystemInstruction: &GeminiContent{
			Parts: []GeminiPart{{Text: systemPrompt}},
		},
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: textMimeType,
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	endpoint := c.baseURL + fmt.Sprintf(generateContentPath, url.PathEscape(c.model)) + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info().Str("model", c.model).Msg("Calling Gemini API")
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		err := fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Gemini call failed")
		return "", err
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content found in Gemini response")
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Gemini call succeeded")
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
