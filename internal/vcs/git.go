// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Runner executes one version-control primitive in a working directory
// and returns its textual output. Implementations block until the
// external process completes.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// Git runs the git binary. The zero value is not usable; construct with
// New.
type Git struct {
	bin string
	log *log.Logger
}

// New returns a Git runner using the given binary name (empty means
// "git") and logger.
func New(bin string, logger *log.Logger) *Git {
	if bin == "" {
		bin = "git"
	}
	return &Git{bin: bin, log: logger}
}

// Run executes git with args in dir. Standard output is returned with
// surrounding whitespace trimmed; a non-zero exit becomes an *OpError
// carrying the exit code and the stderr diagnostic verbatim.
func (g *Git) Run(ctx context.Context, dir string, args ...string) (string, error) {
	g.log.Debug("git", "dir", dir, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, g.bin, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &OpError{
			Dir:    dir,
			Args:   args,
			Output: strings.TrimSpace(stderr.String()),
			Code:   code,
			Err:    err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}
