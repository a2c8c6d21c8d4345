package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var providersFlags struct {
	eager      bool
	jsonOutput bool
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Run one discovery cycle and print the provider registry",
	Long: `Run one discovery cycle against the environment credentials and print
the ranked provider registry.

Examples:
  # List providers without network probes (lazy)
  saturn providers

  # Probe every candidate before listing
  saturn providers --eager

  # Machine-readable output
  saturn providers --json`,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolVar(&providersFlags.eager, "eager", false, "probe each candidate over the network")
	providersCmd.Flags().BoolVar(&providersFlags.jsonOutput, "json", false, "output JSON instead of a table")
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if providersFlags.eager {
		cfg.Discovery.Eager = true
	}

	s, err := newStack(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	views := s.router.ListProviders(context.Background(), true)

	if providersFlags.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	if len(views) == 0 {
		fmt.Println("no providers configured; set an API key such as GEMINI_API_KEY or OPENAI_API_KEY")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tSTATUS\tLATENCY\tSPEED\tDETAIL")
	for _, v := range views {
		latency := "-"
		if v.LatencyMs != nil {
			latency = fmt.Sprintf("%dms", *v.LatencyMs)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", v.ID, v.Label, v.Status, latency, v.Speed, v.Detail)
	}
	return w.Flush()
}
