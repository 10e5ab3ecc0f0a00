// SPDX-License-Identifier: MPL-2.0

// Package config loads the optional fxmod tool configuration.
//
// Defaults can come from a config.toml in the platform config directory
// or from FXMOD_* environment variables; command-line flags always win.
package config
