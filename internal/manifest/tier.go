// SPDX-License-Identifier: MPL-2.0

package manifest

// Tier classifies when an entry is acted on: at the top level or inside
// nested checkouts, and whether it is required or opt-in.
type Tier string

const (
	// TopRequired entries are checked out on every top-level run.
	TopRequired Tier = "T:T"
	// TopOptional entries are checked out only when requested via the
	// optional flag or by naming them explicitly.
	TopOptional Tier = "T:F"
	// InternalRequired entries are checked out both at the top level and
	// inside nested manifests.
	InternalRequired Tier = "I:T"
)

// Valid reports whether t is one of the recognized tier codes.
func (t Tier) Valid() bool {
	switch t {
	case TopRequired, TopOptional, InternalRequired:
		return true
	}
	return false
}

// TierSet is the set of tiers the current invocation acts on.
type TierSet []Tier

// Contains reports whether t is part of the set.
func (s TierSet) Contains(t Tier) bool {
	for _, have := range s {
		if have == t {
			return true
		}
	}
	return false
}

// DefaultTiers is the tier set of a plain top-level invocation.
func DefaultTiers() TierSet {
	return TierSet{TopRequired, InternalRequired}
}

// OptionalTiers additionally includes the opt-in tier. Used when the
// optional flag is given or when components are named explicitly.
func OptionalTiers() TierSet {
	return TierSet{TopRequired, InternalRequired, TopOptional}
}

// NestedTiers is the tier set applied to manifests discovered inside a
// freshly checked-out submodule. Nested checkouts never pull in
// nested-optional components.
func NestedTiers() TierSet {
	return TierSet{InternalRequired}
}
