// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for fxmod.
//
// This package implements the Cobra command hierarchy: the root command
// with the shared flags, and the checkout, update, status and test
// actions that dispatch into the reconciliation engine.
package cmd
