package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowforge/internal/provider"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask an automation question with live grounding",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := provider.New(cfg)
		if err != nil {
			return err
		}
		answer, sources, err := client.Chat(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(answer)
		if len(sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range sources {
				fmt.Printf("  - %s (%s)\n", src.Title, src.URI)
			}
		}
		return nil
	},
}
