// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// updateCmd checks out missing components, then moves every present one
// to its pinned tag.
var updateCmd = &cobra.Command{
	Use:   "update [components...]",
	Short: "Bring checked-out components to their pinned tags",
	Long: `Check out missing in-scope components, then bring every present one to
the manifest's pinned tag.

A component whose configured remote has drifted from the manifest (a
fork, say) gets a dedicated remote added; origin is never rewritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := setup(args)
		if err != nil {
			return err
		}
		if err := inv.engine.Checkout(cmd.Context(), inv.man, inv.tiers); err != nil {
			return err
		}
		return inv.engine.Update(cmd.Context(), inv.man, inv.tiers)
	},
}
