package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"flowforge/internal/codec"
	"flowforge/internal/provider"
)

var speakOut string

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Convert text to speech and write a WAV file",
	Long: `Synthesizes the given text with the Gemini TTS model, decodes the raw
PCM16 stream, and writes a self-contained mono WAV file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := provider.New(cfg)
		if err != nil {
			return err
		}
		audioB64, err := client.Synthesize(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		pcm, err := codec.DecodeBase64(audioB64)
		if err != nil {
			return err
		}
		buf, err := codec.PCM16ToSamples(pcm, cfg.Audio.SampleRate, cfg.Audio.Channels)
		if err != nil {
			return err
		}
		wav := codec.SamplesToWAV(buf)

		if err := os.WriteFile(speakOut, wav, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", speakOut, err)
		}
		fmt.Printf("Wrote %s (%d frames at %d Hz)\n", speakOut, buf.FrameCount, buf.SampleRate)
		return nil
	},
}

func init() {
	speakCmd.Flags().StringVarP(&speakOut, "out", "o", "speech.wav", "output WAV path")
}
