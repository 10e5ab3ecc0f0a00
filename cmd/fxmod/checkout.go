// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// checkoutCmd materializes the manifest's components.
var checkoutCmd = &cobra.Command{
	Use:   "checkout [components...]",
	Short: "Check out components declared in the manifest",
	Long: `Check out every in-scope component that is not already present.

Sparse components (fxsparse) are installed with a restricted path set.
Components whose checkout carries its own manifest file are reconciled
recursively with the internal-required tier only. Naming components
restricts scope to them and implies the optional tier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := setup(args)
		if err != nil {
			return err
		}
		return inv.engine.Checkout(cmd.Context(), inv.man, inv.tiers)
	},
}
