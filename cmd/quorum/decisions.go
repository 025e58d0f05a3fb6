package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forgelight/quorum/internal/config"
	"github.com/forgelight/quorum/internal/store"
)

var (
	decisionsID          string
	decisionsTaskID      string
	decisionsMethod      string
	decisionsImplemented string
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List recorded consensus decisions",
	Long: `Decisions lists the consensus decisions recorded by past cycles,
newest first. Filters match exactly; a decision updated after its
initial recording shows its latest state.`,
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

		records, err := db.ListWithKind(cmd.Context(), "decision", nil)
		if err != nil {
			return err
		}
		decisions := filterDecisions(records, decisionFilters())
		if len(decisions) == 0 {
			fmt.Println("No matching decisions.")
			return nil
		}
		for _, d := range decisions {
			printDecision(d)
		}
		return nil
	},
}

func init() {
	decisionsCmd.Flags().StringVar(&decisionsID, "id", "", "Filter by decision id")
	decisionsCmd.Flags().StringVar(&decisionsTaskID, "task", "", "Filter by task id")
	decisionsCmd.Flags().StringVar(&decisionsMethod, "method", "", "Filter by consensus method")
	decisionsCmd.Flags().StringVar(&decisionsImplemented, "implemented", "", "Filter by implementation status (true/false)")
}

func decisionFilters() map[string]string {
	filters := make(map[string]string)
	if decisionsID != "" {
		filters["id"] = decisionsID
	}
	if decisionsTaskID != "" {
		filters["task_id"] = decisionsTaskID
	}
	if decisionsMethod != "" {
		filters["method"] = decisionsMethod
	}
	if decisionsImplemented != "" {
		filters["implemented"] = decisionsImplemented
	}
	return filters
}

// filterDecisions keeps the newest record per decision id and applies
// the exact-match filters. Records arrive newest first, so the first
// occurrence of an id is its latest state.
func filterDecisions(records []map[string]any, filters map[string]string) []map[string]any {
	seen := make(map[string]bool, len(records))
	var out []map[string]any
	for _, r := range records {
		id, _ := r["id"].(string)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if decisionRecordMatches(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func decisionRecordMatches(r map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		switch key {
		case "id", "task_id", "method":
			if got, _ := r[key].(string); got != want {
				return false
			}
		case "implemented":
			got, _ := r[key].(bool)
			if strconv.FormatBool(got) != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func printDecision(d map[string]any) {
	bold := color.New(color.Bold)
	bold.Printf("%v", d["id"])
	fmt.Printf("  task=%v method=%v\n", d["task_id"], d["method"])
	fmt.Printf("  %v\n", d["text"])
	if implemented, _ := d["implemented"].(bool); implemented {
		line := "  implemented"
		if details, _ := d["implementation_details"].(string); details != "" {
			line += ": " + details
		}
		fmt.Println(line)
	}
	fmt.Println()
}
