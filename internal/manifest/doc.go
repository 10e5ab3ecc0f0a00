// SPDX-License-Identifier: MPL-2.0

// Package manifest loads and represents the extended .gitmodules manifest.
//
// The manifest is a standard git-config file whose [submodule "name"]
// sections carry extra fx* options on top of the plain path/url pair:
// fxurl (canonical remote), fxtag (pinned revision), fxrequired (tier)
// and fxsparse (sparse path-spec file). All optional attributes are
// resolved into explicit Entry fields in a single validation pass at
// load time.
package manifest
