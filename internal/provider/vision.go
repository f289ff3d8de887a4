package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	"flowforge/internal/fault"
)

const visionSystemPrompt = "You analyze screenshots and diagrams of automation workflows. Describe what " +
	"the workflow does, point out problems, and suggest improvements."

// AnalyzeImage sends an image with a prompt and returns the model's analysis.
func (c *Client) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", fault.ErrConfiguration)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	if prompt == "" {
		prompt = "Describe this automation workflow."
	}

	reqBody := &geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
					{Text: prompt},
				},
			},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: visionSystemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.4,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}

	resp, err := c.generate(ctx, c.cfg.Model, reqBody)
	if err != nil {
		return "", err
	}
	return textOf(resp), nil
}
