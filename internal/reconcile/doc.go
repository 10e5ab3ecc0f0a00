// SPDX-License-Identifier: MPL-2.0

// Package reconcile converges a working tree with its manifest.
//
// The Engine classifies each manifest entry against the current state of
// the working tree and executes the minimal transition: skip, full
// checkout, sparse checkout, or tag update. Nested manifests discovered
// inside freshly checked-out submodules are consumed from an explicit
// worklist rather than by recursion, always with the internal-required
// tier set. The Verify methods never mutate state; they aggregate a
// failure count instead.
package reconcile
