// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Command sommelier is the command-line front end of the wine recommendation
// engine.
//
// Every command opens the configured stores, does one thing and prints the
// result as JSON on stdout. Logs go to stderr.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins):
//   - Environment variables (SOMMELIER_*)
//   - Config file (--config, SOMMELIER_CONFIG, or ./config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	sommelier bootstrap --reset --csv lcbo_wines_updated.csv
//	sommelier recommend 3f0c... -n 3
//	sommelier feedback 3f0c... 8d1e... up
//	sommelier recommend 3f0c... -n 3 --exclude 8d1e...
//	sommelier serve
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sommelier",
		Short: "Sommelier - wine recommendations from thumbs up and down",
		Long: `sommelier keeps a wine catalog, records each user's thumbs up and
thumbs down, and recommends wines close to what the user liked and away
from what they disliked.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path (default: search SOMMELIER_CONFIG, ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging.level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newBootstrapCmd(),
		newIngestCmd(),
		newAddCmd(),
		newDeleteCmd(),
		newProductsCmd(),
		newFeedbackCmd(),
		newRecommendCmd(),
		newIndexCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd, map[string]string{"version": version})
		},
	}
}
