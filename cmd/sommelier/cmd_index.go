// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"

	"github.com/spf13/cobra"
)

// repairOutput is printed by `index repair`.
type repairOutput struct {
	Pruned    int `json:"pruned"`
	Reindexed int `json:"reindexed"`
}

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect and repair the vector index",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show collection sizes and drift against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				stats, err := a.engine.IndexStats(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd, stats)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "repair",
		Short: "Remove vectors of deleted wines and index wines without a vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var out repairOutput
				var err error
				if out.Pruned, err = a.engine.PruneOrphans(ctx); err != nil {
					return err
				}
				if out.Reindexed, err = a.engine.Reindex(ctx); err != nil {
					return err
				}
				return writeJSON(cmd, out)
			})
		},
	})
	return cmd
}
