package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forgelight/quorum/internal/config"
	"github.com/forgelight/quorum/internal/store"
	"github.com/forgelight/quorum/pkg/models"
)

var reportCycleID string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the most recent final report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		storePath := cfg.Store.Path
		if storePath == "" {
			storePath = store.DefaultDBPath()
		}
		db, err := store.OpenSQLite(storePath)
		if err != nil {
			return err
		}
		defer db.Close()

		return printReport(cmd.Context(), db, reportCycleID)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportCycleID, "cycle", "", "Cycle id (default: most recent)")
}

func printReport(ctx context.Context, db store.Store, cycleID string) error {
	var meta map[string]string
	if cycleID != "" {
		meta = map[string]string{"cycle_id": cycleID}
	}
	report, err := db.RetrieveWithEDRRPhase(ctx, "final_report", models.PhaseRetrospect, meta)
	if err != nil {
		return fmt.Errorf("no final report found: %w", err)
	}

	bold := color.New(color.Bold)
	bold.Printf("\nFinal report for cycle %v\n", report["cycle_id"])
	fmt.Printf("Task: %v\n", report["task_summary"])

	if summaries, ok := report["phase_summaries"].(map[string]any); ok {
		bold.Println("\nPhases")
		for _, phase := range models.PhaseOrder {
			if s, ok := summaries[string(phase)]; ok {
				fmt.Printf("  %-13s %v\n", phase, s)
			}
		}
	}
	printReportList(report["chosen_plan"], "Chosen plan")
	printReportList(report["next_steps"], "Next steps")
	printReportList(report["considerations"], "Considerations")
	return nil
}

func printReportList(v any, title string) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return
	}
	color.New(color.Bold).Printf("\n%s\n", title)
	for _, item := range items {
		fmt.Printf("  - %v\n", item)
	}
}
