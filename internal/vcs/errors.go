// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"fmt"
	"strings"
)

// OpError reports a git primitive that exited non-zero. The Output field
// carries the primitive's stderr diagnostic unmodified.
type OpError struct {
	Dir    string
	Args   []string
	Output string
	Code   int
	Err    error
}

// Error formats the failed invocation together with its diagnostic.
func (e *OpError) Error() string {
	msg := fmt.Sprintf("git %s (in %s) failed", strings.Join(e.Args, " "), e.Dir)
	if e.Output != "" {
		return msg + ": " + e.Output
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *OpError) Unwrap() error {
	return e.Err
}
