package provider

import (
	"context"
	"fmt"

	"flowforge/internal/blueprint"
)

const blueprintSystemPrompt = "You are an automation architect. Given a goal, design a concrete workflow " +
	"for the requested platform. The first step should be a trigger. Keep titles short and descriptions " +
	"actionable. Respond only with the requested JSON object."

// GenerateBlueprint asks the model for a structured workflow blueprint. The
// blueprint schema is sent as a generation constraint and applied again at
// parse time, so the provider cannot drift from the local contract.
func (c *Client) GenerateBlueprint(ctx context.Context, goal string, platform blueprint.Platform) (*blueprint.Blueprint, error) {
	userPrompt := fmt.Sprintf("Automation goal: %s\nTarget platform: %s", goal, platform)

	reqBody := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: blueprintSystemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.4,
			MaxOutputTokens:  c.cfg.MaxTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   blueprint.GenerationSchema().JSONSchema(),
		},
	}

	resp, err := c.generate(ctx, c.cfg.Model, reqBody)
	if err != nil {
		return nil, err
	}

	bp, err := blueprint.Parse(textOf(resp))
	if err != nil {
		return nil, err
	}
	if len(bp.Sources) == 0 {
		bp.Sources = sourcesOf(resp)
	}
	return bp, nil
}
