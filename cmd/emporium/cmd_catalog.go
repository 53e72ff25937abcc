package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

func newProductsCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the unicorn catalog",
		Long: `List the unicorn catalog, optionally filtered by category
(all, classic, rainbow, celestial, rare).

When the storefront API cannot be reached the built-in sample catalog is
shown instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := models.Category(category)
			if c != models.CategoryAll && !c.IsValid() {
				return fmt.Errorf("unknown category %q", category)
			}

			listing := a.fetcher.Products(cmd.Context(), c)
			if listing.Advisory != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), listing.Advisory)
			}
			printProducts(cmd.OutOrStdout(), listing.Products)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(models.CategoryAll), "Category filter")
	return cmd
}

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one unicorn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			p, listing, ok := a.fetcher.Product(cmd.Context(), id)
			if listing.Advisory != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), listing.Advisory)
			}
			if !ok {
				return fmt.Errorf("product %d not found", id)
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
