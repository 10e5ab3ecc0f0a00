// SPDX-License-Identifier: MPL-2.0

package main

import cmd "fxmod-cli/cmd/fxmod"

func main() {
	cmd.Execute()
}
