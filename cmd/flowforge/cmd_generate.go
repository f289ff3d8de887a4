package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowforge/internal/blueprint"
	"flowforge/internal/provider"
	"flowforge/internal/store"
)

var (
	generatePlatform string
	generateSave     bool
	generateJSON     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [goal]",
	Short: "Generate a workflow blueprint from a natural-language goal",
	Long: `Asks the model for a structured workflow blueprint and validates it
against the blueprint contract before printing it.

Example:
  flowforge generate "When a Stripe payment succeeds, add the customer to Mailchimp" --platform zapier`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := strings.Join(args, " ")

		client, err := provider.New(cfg)
		if err != nil {
			return err
		}
		bp, err := client.GenerateBlueprint(cmd.Context(), goal, blueprint.Platform(generatePlatform))
		if err != nil {
			return err
		}

		if generateSave {
			lib, err := store.Open(cfg.Library.Path)
			if err != nil {
				return err
			}
			defer lib.Close()
			id, err := lib.SaveBlueprint(goal, bp)
			if err != nil {
				return err
			}
			fmt.Printf("Saved as %s\n\n", id)
		}

		if generateJSON {
			out, err := json.MarshalIndent(bp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		printBlueprint(bp)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generatePlatform, "platform", "p", string(blueprint.PlatformGeneric), "target platform (zapier, make, n8n, power_automate, generic)")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "save the blueprint to the library")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print raw JSON instead of a summary")
}

func printBlueprint(bp *blueprint.Blueprint) {
	fmt.Printf("Platform: %s\n\n%s\n\nSteps:\n", bp.Platform, bp.Explanation)
	for _, step := range bp.Steps {
		fmt.Printf("  %d. [%s] %s\n     %s\n", step.ID, step.Kind, step.Title, step.Description)
	}
	if bp.CodeSnippet != "" {
		fmt.Printf("\nCode snippet:\n%s\n", bp.CodeSnippet)
	}
	if len(bp.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range bp.Sources {
			fmt.Printf("  - %s (%s)\n", src.Title, src.URI)
		}
	}
}
