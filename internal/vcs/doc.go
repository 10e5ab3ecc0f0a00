// SPDX-License-Identifier: MPL-2.0

// Package vcs is the port over the external git executable.
//
// The port is a single synchronous Run call scoped to one working
// directory; the typed helpers in ops.go cover the fixed set of
// primitives the reconciliation engine consumes. Failures surface the
// git diagnostic text unmodified as *OpError. No call swallows a
// non-zero exit; callers decide whether absence of a value is expected.
package vcs
