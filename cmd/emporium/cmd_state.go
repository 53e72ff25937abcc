package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset saved cart and academy progress",
		Long: `Inspect or reset the state saved between runs.

Available subcommands:
  show  - Print the state backend and where it keeps data
  reset - Delete the saved cart and academy progress`,
	}

	cmd.AddCommand(newStateShowCmd(a), newStateResetCmd(a))
	return cmd
}

func newStateShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the state backend and where it keeps data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:  %s\n", a.state.Type())
			fmt.Fprintf(out, "Location: %s\n", stateLocation(a.state, a.namespace))
			fmt.Fprintf(out, "Cart:     %s\n", cartSummary(a.cart.Snapshot()))
			fmt.Fprintf(out, "Academy:  %d of %d modules\n", a.tracker.Count(), a.tracker.Total())
			return nil
		},
	}
}

func newStateResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved cart and academy progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes saved state for %s, pass --yes to confirm", stateLocation(a.state, a.namespace))
			}

			n, err := a.state.Purge(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to reset state: %w", err)
			}
			a.bindState(cmd.Context())

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d saved entries.\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting saved state")
	return cmd
}
