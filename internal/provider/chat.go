package provider

import (
	"context"
	"fmt"

	"flowforge/internal/blueprint"
	"flowforge/internal/fault"
)

const chatSystemPrompt = "You are an automation consultant. Give practical, current advice about workflow " +
	"automation tools and integrations. Cite sources when you use them."

// Chat answers a free-form automation question with Google Search grounding
// and returns the answer text plus any citations the model used.
func (c *Client) Chat(ctx context.Context, question string) (string, []blueprint.Source, error) {
	if question == "" {
		return "", nil, fmt.Errorf("%w: empty question", fault.ErrConfiguration)
	}

	reqBody := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: question}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: chatSystemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
		Tools: []geminiTool{{GoogleSearch: &struct{}{}}},
	}

	resp, err := c.generate(ctx, c.cfg.Model, reqBody)
	if err != nil {
		return "", nil, err
	}
	return textOf(resp), sourcesOf(resp), nil
}
