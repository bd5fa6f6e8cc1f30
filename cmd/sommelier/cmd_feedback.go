// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/recommend"
)

// feedbackOutput is printed after a vote is recorded.
type feedbackOutput struct {
	UserID    string   `json:"user_id"`
	ProductID string   `json:"product_id"`
	Direction string   `json:"direction"`
	Likes     []string `json:"likes"`
	Dislikes  []string `json:"dislikes"`
}

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <user-id> <product-id> <up|down>",
		Short: "Record a thumbs up or thumbs down",
		Long: `Record a vote and update the user's preference vector.

A later vote on the same product replaces the earlier one.

Examples:
  sommelier feedback alice 8d1e... up
  sommelier feedback show alice`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, productID, direction := args[0], args[1], args[2]
			return withApp(cmd, func(ctx context.Context, a *app) error {
				fb, err := a.engine.RecordFeedback(ctx, userID, productID, direction)
				if err != nil {
					return err
				}
				return writeJSON(cmd, feedbackOutput{
					UserID:    userID,
					ProductID: productID,
					Direction: direction,
					Likes:     fb.Likes,
					Dislikes:  fb.Dislikes,
				})
			})
		},
	}

	cmd.AddCommand(newFeedbackShowCmd())
	return cmd
}

func newFeedbackShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's likes and dislikes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return recommend.ErrEmptyUserID
			}
			return withApp(cmd, func(_ context.Context, a *app) error {
				return writeJSON(cmd, a.engine.UserFeedback(args[0]))
			})
		},
	}
}
