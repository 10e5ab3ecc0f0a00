// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/charmbracelet/log"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func TestGitRun_TrimsOutput(t *testing.T) {
	t.Parallel()
	requireGit(t)

	g := New("", log.New(io.Discard))
	out, err := g.Run(context.Background(), t.TempDir(), "version")
	if err != nil {
		t.Fatalf("git version: %v", err)
	}
	if out == "" || out[len(out)-1] == '\n' {
		t.Errorf("expected trimmed non-empty output, got %q", out)
	}
}

func TestGitRun_FailureSurfacesOpError(t *testing.T) {
	t.Parallel()
	requireGit(t)

	g := New("", log.New(io.Discard))
	_, err := g.Run(context.Background(), t.TempDir(), "rev-parse", "HEAD")
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %v", err)
	}
	if opErr.Code == 0 {
		t.Error("expected a non-zero exit code")
	}
	if opErr.Output == "" {
		t.Error("expected the git diagnostic to be carried through")
	}
}
