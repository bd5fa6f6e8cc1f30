// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/sommelier/internal/recommend"
)

// DefaultCSVPath is the export bootstrap looks for when --csv is not given.
const DefaultCSVPath = "lcbo_wines_updated.csv"

func newBootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Load the wine catalog from CSV, falling back to sample wines",
		Long: `Prepare the catalog for use.

With --reset both vector collections are dropped and recreated and the
catalog is emptied. The CSV export is then ingested if it exists. If the
catalog is still empty afterwards, three sample wines are added.

Examples:
  sommelier bootstrap
  sommelier bootstrap --reset --csv exports/lcbo.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reset, _ := cmd.Flags().GetBool("reset")
			csvPath, _ := cmd.Flags().GetString("csv")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.engine.Bootstrap(ctx, recommend.BootstrapOptions{
					Reset:   reset,
					CSVPath: csvPath,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd, result)
			})
		},
	}

	cmd.Flags().Bool("reset", false, "Drop vector collections and empty the catalog first")
	cmd.Flags().String("csv", DefaultCSVPath, "CSV export to ingest; a missing file is skipped")
	return cmd
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <csv>",
		Short: "Add every wine in a CSV export to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				stats, err := a.engine.LoadProductsFromCSV(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, stats)
			})
		},
	}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one wine to the catalog",
		Long: `Add a wine from flags or from a YAML file.

Examples:
  sommelier add --name "Pinot Noir" --price 27.99 --category "Red Wine" --tags "cherry,silky"
  sommelier add --file wine.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := productInputFromFlags(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.engine.AddProduct(ctx, in)
				if err != nil {
					return err
				}
				return writeJSON(cmd, p)
			})
		},
	}

	cmd.Flags().String("file", "", "YAML file describing the wine; other flags are ignored")
	cmd.Flags().String("id", "", "Product id (default: generated)")
	cmd.Flags().String("name", "", "Wine name")
	cmd.Flags().String("description", "", "Free-text description")
	cmd.Flags().Float64("price", 0, "Price")
	cmd.Flags().String("category", "", "Category, e.g. \"Red Wine\"")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().String("country", "", "Country of origin")
	cmd.Flags().String("brand", "", "Producer or brand")
	cmd.Flags().String("alcohol", "", "Alcohol content, e.g. 13.5")
	cmd.Flags().String("rating", "", "Rating")
	cmd.Flags().String("image", "", "Image path or URL")
	return cmd
}

// productInputFromFlags builds the add request from --file or the
// individual flags. Optional attributes are only set when their flag was
// given.
func productInputFromFlags(cmd *cobra.Command) (recommend.ProductInput, error) {
	var in recommend.ProductInput

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
		if err != nil {
			return in, fmt.Errorf("read product file: %w", err)
		}
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse product file %s: %w", path, err)
		}
		return in, nil
	}

	flags := cmd.Flags()
	in.ID, _ = flags.GetString("id")
	in.Name, _ = flags.GetString("name")
	in.Description, _ = flags.GetString("description")
	in.Price, _ = flags.GetFloat64("price")
	in.Category, _ = flags.GetString("category")
	in.Tags, _ = flags.GetString("tags")
	in.Image, _ = flags.GetString("image")

	optional := map[string]**string{
		"country": &in.Country,
		"brand":   &in.Brand,
		"alcohol": &in.AlcoholContent,
		"rating":  &in.Rating,
	}
	for name, dst := range optional {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	return in, nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Remove a wine from the catalog and the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.engine.DeleteProduct(ctx, args[0]); err != nil {
					return err
				}
				return writeJSON(cmd, map[string]string{"deleted": args[0]})
			})
		},
	}
}

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				return writeJSON(cmd, a.engine.Products())
			})
		},
	}
}
