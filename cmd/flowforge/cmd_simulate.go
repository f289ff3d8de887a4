package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowforge/internal/blueprint"
	"flowforge/internal/provider"
	"flowforge/internal/simulation"
	"flowforge/internal/store"
)

var (
	simulatePayloadPath string
	simulateSave        bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [blueprint-id]",
	Short: "Dry-run a saved blueprint against a sample payload",
	Long: `Loads a blueprint from the library and asks the model to walk it step
by step against a sample JSON payload. The resulting trace is validated
against the blueprint before anything is shown.

Example:
  flowforge simulate 1f6c... --payload order.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(simulatePayloadPath)
		if err != nil {
			return fmt.Errorf("failed to read payload %s: %w", simulatePayloadPath, err)
		}

		lib, err := store.Open(cfg.Library.Path)
		if err != nil {
			return err
		}
		defer lib.Close()

		rec, err := lib.GetBlueprint(args[0])
		if err != nil {
			return err
		}

		client, err := provider.New(cfg)
		if err != nil {
			return err
		}
		trace, err := client.SimulateRun(cmd.Context(), rec.Blueprint, string(payload))
		if err != nil {
			return err
		}

		if simulateSave {
			if _, err := lib.SaveTrace(rec.ID, string(payload), trace); err != nil {
				return err
			}
		}

		printTrace(rec.Blueprint, trace)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulatePayloadPath, "payload", "payload.json", "sample payload JSON file")
	simulateCmd.Flags().BoolVar(&simulateSave, "save", false, "save the trace to the library")
	simulateCmd.MarkFlagRequired("payload")
}

func printTrace(bp *blueprint.Blueprint, trace *simulation.Trace) {
	fmt.Printf("Overall: %s\n%s\n\n", trace.OverallStatus, trace.Summary)
	for i, result := range trace.StepResults {
		fmt.Printf("  %d. [%s] %s\n     output: %s\n     why: %s\n",
			result.StepID, result.Status, bp.Steps[i].Title, result.Output, result.Reasoning)
	}
}
