// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"fxmod-cli/internal/manifest"

	"github.com/spf13/cobra"
)

// testCmd is status plus manifest-declaration checks; the process exit
// code is the aggregate failure count.
var testCmd = &cobra.Command{
	Use:   "test [components...]",
	Short: "Verify full synchronization; exit code is the failure count",
	Long: `Run every status check plus the strict ones: the configured url must
match the canonical fxurl, a missing pin counts as a failure, and a
declared sparse path-spec must exist on disk.

The process exit code equals the number of failures, so zero means the
working tree is fully synchronized with the manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := setup(args)
		if err != nil {
			return err
		}
		failures, err := inv.engine.Verify(cmd.Context(), inv.man, manifest.OptionalTiers(), true)
		if err != nil {
			return err
		}
		printSummary(failures)
		if failures > 0 {
			return &ExitError{Code: failures, Err: fmt.Errorf("%d component(s) out of sync", failures)}
		}
		return nil
	},
}
