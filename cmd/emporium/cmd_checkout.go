package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/unicorn-emporium/internal/checkout"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

var errEmptyCart = errors.New("your cart is empty")

func newCheckoutCmd(a *app) *cobra.Command {
	var form checkout.Form
	var delivery string

	methods := make([]string, 0, len(models.DeliveryMethods))
	for _, m := range models.DeliveryMethods {
		methods = append(methods, fmt.Sprintf("  %-17s %s", m, m.Label()))
	}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Place an order for everything in the cart and empty it.

Delivery methods:
` + strings.Join(methods, "\n"),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := a.cart.Lines()
			if len(lines) == 0 {
				return errEmptyCart
			}

			form.Delivery = models.DeliveryMethod(delivery)
			if err := form.Validate(); err != nil {
				return err
			}

			a.cart.OpenCheckout()
			result := a.checkout.Submit(cmd.Context(), &form)
			defer a.cart.CloseSuccess()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Thank you! Your magical unicorn is on its way.\n")
			fmt.Fprintf(out, "Order number: %s\n", result.OrderID)
			if !result.Confirmed() {
				fmt.Fprintln(cmd.ErrOrStderr(), "note: the storefront did not confirm this order, keep the number for support")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Customer name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Customer email")
	cmd.Flags().StringVar(&form.Address, "address", "", "Delivery address")
	cmd.Flags().StringVar(&delivery, "delivery", string(models.DeliveryRainbowPortal), "Delivery method")
	return cmd
}
