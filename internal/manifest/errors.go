// SPDX-License-Identifier: MPL-2.0

package manifest

// ConfigError reports a missing, unreadable or invalid manifest. It is
// always fatal: configuration errors are not transient.
type ConfigError struct {
	// Path is the manifest file (or the filename searched for).
	Path string
	// Msg describes what is wrong with it.
	Msg string
}

// Error returns the diagnostic message.
func (e *ConfigError) Error() string {
	return e.Msg
}
