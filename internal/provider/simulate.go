package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"flowforge/internal/blueprint"
	"flowforge/internal/fault"
	"flowforge/internal/simulation"
)

const simulateSystemPrompt = "You dry-run automation workflows. Walk the given blueprint step by step " +
	"against the sample payload, reporting for every step whether it would succeed, fail, or be skipped, " +
	"with the data it would produce. Report steps in the same order as the blueprint and reuse its step ids " +
	"exactly. Respond only with the requested JSON object."

// SimulateRun dry-runs a blueprint against a sample JSON payload and returns
// the validated execution trace. A malformed payload is a ConfigurationError
// surfaced before any remote call.
func (c *Client) SimulateRun(ctx context.Context, bp *blueprint.Blueprint, payloadJSON string) (*simulation.Trace, error) {
	if !json.Valid([]byte(payloadJSON)) {
		return nil, fmt.Errorf("%w: sample payload is not valid JSON", fault.ErrConfiguration)
	}

	bpJSON, err := json.Marshal(bp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blueprint: %w", err)
	}

	userPrompt := fmt.Sprintf("Blueprint:\n%s\n\nSample payload:\n%s", bpJSON, payloadJSON)

	reqBody := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: simulateSystemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.2,
			MaxOutputTokens:  c.cfg.MaxTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   simulation.TraceSchema().JSONSchema(),
		},
	}

	resp, err := c.generate(ctx, c.cfg.Model, reqBody)
	if err != nil {
		return nil, err
	}
	return simulation.BuildTrace(bp, textOf(resp))
}
