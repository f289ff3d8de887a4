package provider

import (
	"context"
	"fmt"

	"flowforge/internal/fault"
)

// Synthesize converts text to speech and returns the audio payload exactly as
// transported: base64-encoded raw PCM16. Decoding and WAV containerization
// belong to the codec layer.
func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: nothing to speak", fault.ErrConfiguration)
	}

	reqBody := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: text}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &geminiSpeechConfig{
				VoiceConfig: geminiVoiceConfig{
					PrebuiltVoiceConfig: geminiPrebuiltVoice{VoiceName: c.cfg.TTSVoice},
				},
			},
		},
	}

	resp, err := c.generate(ctx, c.cfg.TTSModel, reqBody)
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return part.InlineData.Data, nil
		}
	}
	return "", fmt.Errorf("%w: response contains no audio data", fault.ErrMalformedOutput)
}
