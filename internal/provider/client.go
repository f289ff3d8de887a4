// Package provider is the boundary to the Gemini API. Every outbound call
// constructs a fresh HTTP client, runs through the invocation gateway for
// retry and classification, and returns either typed data or a classified
// error. No connection or client state is shared across invocations.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flowforge/internal/blueprint"
	"flowforge/internal/config"
	"flowforge/internal/fault"
	"flowforge/internal/gateway"
	"flowforge/internal/logging"
)

// Client issues Gemini calls under a fixed configuration and retry policy.
// It holds no connection state; each invocation owns its own HTTP client.
type Client struct {
	cfg    config.GeminiConfig
	apiKey string
	policy gateway.Policy
}

// New validates the credential and returns a Client. A missing credential is
// a ConfigurationError raised here, before any network attempt.
func New(cfg *config.Config) (*Client, error) {
	key, err := cfg.Gemini.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg.Gemini,
		apiKey: key,
		policy: cfg.Policy(),
	}, nil
}

// generate posts a generateContent request for the given model, retrying
// transient failures per the configured policy.
func (c *Client) generate(ctx context.Context, model string, reqBody *geminiRequest) (*geminiResponse, error) {
	start := time.Now()
	logging.APIDebug("generate: model=%s contents=%d", model, len(reqBody.Contents))

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, model, c.apiKey)

	op := func(ctx context.Context) (*geminiResponse, error) {
		httpClient := &http.Client{Timeout: c.cfg.RequestTimeout()}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, &fault.HTTPError{Status: resp.StatusCode, Message: apiMessage(body)}
		}

		var geminiResp geminiResponse
		if err := json.Unmarshal(body, &geminiResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if geminiResp.Error != nil {
			return nil, &fault.HTTPError{Status: geminiResp.Error.Code, Message: geminiResp.Error.Message}
		}
		if len(geminiResp.Candidates) == 0 {
			return nil, fmt.Errorf("%w: no completion returned", fault.ErrMalformedOutput)
		}
		return &geminiResp, nil
	}

	result, err := gateway.Invoke(ctx, c.policy, gateway.ClassifyHTTP, op)
	if err != nil {
		logging.APIError("generate: model=%s failed after %v: %v", model, time.Since(start), err)
		return nil, err
	}
	logging.API("generate: model=%s completed in %v tokens=%d",
		model, time.Since(start), result.UsageMetadata.TotalTokenCount)
	return result, nil
}

// apiMessage extracts the error message from an API error body, falling back
// to the raw body.
func apiMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// textOf concatenates the text parts of the first candidate.
func textOf(resp *geminiResponse) string {
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

// sourcesOf extracts grounding citations from the first candidate.
func sourcesOf(resp *geminiResponse) []blueprint.Source {
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}
	var sources []blueprint.Source
	for _, chunk := range gm.GroundingChunks {
		if chunk.Web != nil && chunk.Web.URI != "" {
			sources = append(sources, blueprint.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return sources
}
