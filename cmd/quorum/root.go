package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Multi-agent consensus and phase orchestration engine",
	Long: `Quorum organizes a pool of specialized agents into a non-hierarchical
team and drives a task through four ordered phases: Expand,
Differentiate, Refine, Retrospect.

Each phase re-elects a transient lead (the Primus) by expertise,
divergent agent opinions are merged through conflict detection and
weighted synthesis rather than unilateral authority, and every phase
result and decision is written to a durable store.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(decisionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
