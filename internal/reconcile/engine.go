// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"fxmod-cli/internal/vcs"

	"github.com/charmbracelet/log"
)

// Engine drives the version-control port to converge manifest entries
// with the working tree. Construct with New; the zero value is unusable.
type Engine struct {
	git vcs.Runner
	log *log.Logger
	out io.Writer
}

// New returns an Engine writing per-entry reports to out.
func New(git vcs.Runner, logger *log.Logger, out io.Writer) *Engine {
	return &Engine{git: git, log: logger, out: out}
}

// hasGitMarker reports whether dir contains version-control metadata,
// either a .git directory or a gitdir link file.
func hasGitMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// httpsEquivalent rewrites an SSH-form url (git@host:owner/repo) to its
// HTTPS equivalent. ok is false when url is not SSH-form.
func httpsEquivalent(url string) (https string, ok bool) {
	rest, found := strings.CutPrefix(url, "git@")
	if !found {
		return "", false
	}
	host, path, found := strings.Cut(rest, ":")
	if !found || host == "" || path == "" {
		return "", false
	}
	return "https://" + host + "/" + path, true
}

// normalizeURL strips the conventional .git suffix and lowercases, so
// fork-drift comparison ignores cosmetic differences.
func normalizeURL(url string) string {
	return strings.ToLower(strings.TrimSuffix(url, ".git"))
}
