package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowforge/internal/config"
	"flowforge/internal/fault"
	"flowforge/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flowforge",
	Short: "flowforge - AI automation blueprint builder",
	Long: `flowforge turns a natural-language automation goal into a structured,
machine-checkable workflow blueprint via the Gemini API.

It can also answer automation questions with live grounding, analyze workflow
screenshots, speak explanations aloud, and dry-run a blueprint against a
sample payload before you build it for real.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logging.Boot("flowforge starting: model=%s", cfg.Gemini.Model)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "flowforge.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(libraryCmd)

	if err := rootCmd.Execute(); err != nil {
		// Users get the fixed classified message; the chain goes to the logs.
		logging.Get(logging.CategoryBoot).Errorf("command failed: %v", err)
		fmt.Fprintln(os.Stderr, "Error:", fault.UserMessage(err))
		logging.Sync()
		os.Exit(1)
	}
}
