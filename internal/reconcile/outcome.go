// SPDX-License-Identifier: MPL-2.0

package reconcile

// Outcome is the explicit result of reconciling one manifest entry.
type Outcome int

const (
	// Skipped means the entry was out of scope for this invocation.
	Skipped Outcome = iota
	// Present means the working tree already existed and was left alone.
	Present
	// CheckedOut means a full or sparse checkout materialized the entry.
	CheckedOut
	// Updated means an existing checkout moved to the pinned tag.
	Updated
	// UpToDate means an existing checkout already matched the pin.
	UpToDate
	// Failed means the transition did not complete.
	Failed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Present:
		return "present"
	case CheckedOut:
		return "checked out"
	case Updated:
		return "updated"
	case UpToDate:
		return "up to date"
	case Failed:
		return "failed"
	}
	return "unknown"
}
