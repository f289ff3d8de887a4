package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flowforge/internal/provider"
)

var analyzePrompt string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image]",
	Short: "Analyze a workflow screenshot or diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		client, err := provider.New(cfg)
		if err != nil {
			return err
		}
		analysis, err := client.AnalyzeImage(cmd.Context(), analyzePrompt, image, mimeTypeFor(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(analysis)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePrompt, "prompt", "", "question to ask about the image")
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
