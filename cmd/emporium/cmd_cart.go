package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/terra-clan/unicorn-emporium/internal/cart"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
		Long: `Manage the shopping cart. The cart is saved in the state backend and
survives between runs.

Available subcommands:
  show   - List the cart lines and total
  add    - Add a unicorn to the cart
  remove - Remove a unicorn from the cart
  set    - Set the quantity of a cart line
  clear  - Empty the cart`,
	}

	cmd.AddCommand(
		newCartShowCmd(a),
		newCartAddCmd(a),
		newCartRemoveCmd(a),
		newCartSetCmd(a),
		newCartClearCmd(a),
	)
	return cmd
}

// watchCart prints a summary line after each cart change until the
// returned func is called
func watchCart(cmd *cobra.Command, store *cart.Store) func() {
	out := cmd.OutOrStdout()
	return store.Subscribe(func(snap cart.Snapshot) {
		fmt.Fprintln(out, cartSummary(snap))
	})
}

func newCartShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the cart lines and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd.OutOrStdout(), a.cart.Lines())
			return nil
		},
	}
}

func newCartAddCmd(a *app) *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a unicorn to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			if qty < 1 {
				return fmt.Errorf("quantity must be at least 1")
			}

			p, listing, ok := a.fetcher.Product(cmd.Context(), id)
			if listing.Advisory != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), listing.Advisory)
			}
			if !ok {
				return fmt.Errorf("product %d not found", id)
			}

			stop := watchCart(cmd, a.cart)
			defer stop()

			if qty == 1 {
				a.cart.AddItem(p)
				return nil
			}

			current := 0
			for _, l := range a.cart.Lines() {
				if l.ID == p.ID {
					current = l.Quantity
				}
			}
			if current == 0 {
				a.cart.AddItem(p)
				current = 1
				qty--
			}
			a.cart.SetQuantity(p.ID, current+qty)
			return nil
		},
	}

	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "Quantity to add")
	return cmd
}

func newCartRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a unicorn from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			stop := watchCart(cmd, a.cart)
			defer stop()

			a.cart.RemoveItem(id)
			return nil
		},
	}
}

func newCartSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			stop := watchCart(cmd, a.cart)
			defer stop()

			a.cart.SetQuantity(id, qty)
			return nil
		},
	}
}

func newCartClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := watchCart(cmd, a.cart)
			defer stop()

			a.cart.Clear()
			return nil
		},
	}
}
