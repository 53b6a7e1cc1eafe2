// Package main is the entry point and command registration hub for the
// grace CLI. Command implementations are split across multiple cmd_*.go
// files, one per subcommand concern, matching the teacher's cmd/nerd
// convention.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uberFoo/grace-sub001/internal/gracelog"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "grace",
	Short: "grace generates Rust source from a domain model",
	Long: `grace reads a domain model and a generation config, classifies each
object, builds its intermediate method model, and emits Rust source text
through a region-tagged, idempotent buffer protocol.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return gracelog.Init(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		gracelog.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "grace.yaml", "path to the generation config")

	rootCmd.AddCommand(generateCmd, classifyCmd, explainCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
