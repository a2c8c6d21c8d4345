package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - LLM provider discovery and routing engine",
	Long: `Saturn maintains a live, ranked registry of LLM provider backends.

It scans the environment for provider credentials, verifies each
(credential, model) pair under a bounded probe pool, caches the ranked
result with a TTL, and routes analysis requests across the registry
with automatic fallback when a backend is rate limited.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
