// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/recommend"
)

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend [user-id]",
		Short: "Recommend wines for a user",
		Long: `Print up to n wines ranked by closeness to the user's preference.

Users without feedback, and calls without a user id, get a random sample.
Pass the ids already shown with --exclude to page through the catalog.

Examples:
  sommelier recommend alice -n 3
  sommelier recommend alice -n 3 --exclude 8d1e...,02ab...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exclude, _ := cmd.Flags().GetStringSlice("exclude")
			var userID string
			if len(args) == 1 {
				userID = args[0]
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				n, _ := cmd.Flags().GetInt("n")
				if !cmd.Flags().Changed("n") {
					n = a.cfg.Recommend.DefaultResults
				}

				ctx = logging.ContextWithNewCorrelationID(ctx)
				products, err := a.engine.Recommend(ctx, recommend.Request{
					UserID:     userID,
					N:          n,
					ExcludeIDs: exclude,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd, products)
			})
		},
	}

	cmd.Flags().IntP("n", "n", 0, "Number of wines (default: recommend.default_results)")
	cmd.Flags().StringSlice("exclude", nil, "Product ids never to return")
	return cmd
}
