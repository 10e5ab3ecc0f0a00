// SPDX-License-Identifier: MPL-2.0

package reconcile

import "fmt"

// PostconditionError reports a dispatched checkout that left no
// version-control metadata behind. It is fatal for the whole run: a
// missing result after a checkout points at manifest inconsistency or a
// network failure, neither locally recoverable.
type PostconditionError struct {
	Name string
	Path string
}

// Error names the submodule and the path that stayed empty.
func (e *PostconditionError) Error() string {
	return fmt.Sprintf("checkout of %s left no version-control metadata at %s", e.Name, e.Path)
}
