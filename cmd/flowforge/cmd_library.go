package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowforge/internal/store"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage saved blueprints",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved blueprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := store.Open(cfg.Library.Path)
		if err != nil {
			return err
		}
		defer lib.Close()

		records, err := lib.ListBlueprints()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("Library is empty.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %s  [%s, %d steps]  %s\n",
				rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"),
				rec.Blueprint.Platform, len(rec.Blueprint.Steps), rec.Goal)
		}
		return nil
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved blueprint and its simulation history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := store.Open(cfg.Library.Path)
		if err != nil {
			return err
		}
		defer lib.Close()

		rec, err := lib.GetBlueprint(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Goal: %s\nSaved: %s\n\n", rec.Goal, rec.CreatedAt.Format("2006-01-02 15:04"))
		printBlueprint(rec.Blueprint)

		traces, err := lib.ListTraces(rec.ID)
		if err != nil {
			return err
		}
		if len(traces) > 0 {
			fmt.Println("\nSimulation runs:")
			for _, tr := range traces {
				fmt.Printf("  %s  %s  overall=%s\n",
					tr.ID, tr.CreatedAt.Format("2006-01-02 15:04"), tr.Trace.OverallStatus)
			}
		}
		return nil
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved blueprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := store.Open(cfg.Library.Path)
		if err != nil {
			return err
		}
		defer lib.Close()
		if err := lib.DeleteBlueprint(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)
}
