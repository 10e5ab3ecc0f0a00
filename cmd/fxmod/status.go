// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"fxmod-cli/internal/manifest"

	"github.com/spf13/cobra"
)

// statusCmd reports per-component sync state without mutating anything.
var statusCmd = &cobra.Command{
	Use:   "status [components...]",
	Short: "Report the sync state of every component",
	Long: `Compare working-tree tags against the manifest without mutating state.

Absent components are classified through the superproject's submodule
index and the remote's tag list; present ones through their descriptive
tag. Uncommitted local changes are shown indented. Status inspects all
tiers regardless of -o.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := setup(args)
		if err != nil {
			return err
		}
		failures, err := inv.engine.Verify(cmd.Context(), inv.man, manifest.OptionalTiers(), false)
		if err != nil {
			return err
		}
		printSummary(failures)
		return nil
	},
}

// printSummary renders the aggregate verification result.
func printSummary(failures int) {
	if failures == 0 {
		fmt.Fprintln(os.Stdout, SuccessStyle.Render("All components synchronized"))
		return
	}
	fmt.Fprintln(os.Stdout, ErrorStyle.Render(fmt.Sprintf("%d component(s) out of sync", failures)))
}
