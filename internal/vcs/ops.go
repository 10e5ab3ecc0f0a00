// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"strings"
)

// Remote is one line of `git remote -v` (fetch direction only).
type Remote struct {
	Name string
	URL  string
}

// RemoteTag is one line of `git ls-remote --tags`.
type RemoteTag struct {
	Hash string
	// Ref is the full ref name, e.g. refs/tags/v2.0.
	Ref string
}

// Tag returns the bare tag name, or "" when the ref is not a tag ref.
func (t RemoteTag) Tag() string {
	const prefix = "refs/tags/"
	if !strings.HasPrefix(t.Ref, prefix) {
		return ""
	}
	return strings.TrimPrefix(t.Ref, prefix)
}

// Peeled reports whether the ref is a peeled annotated-tag ref (^{}).
func (t RemoteTag) Peeled() bool {
	return strings.HasSuffix(t.Ref, "^{}")
}

// Init initializes a standalone repository at dir.
func Init(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "init")
	return err
}

// Clone clones url into path, resolved relative to dir.
func Clone(ctx context.Context, r Runner, dir, url, path string) error {
	_, err := r.Run(ctx, dir, "clone", url, path)
	return err
}

// Checkout checks out the given revision.
func Checkout(ctx context.Context, r Runner, dir, rev string) error {
	_, err := r.Run(ctx, dir, "checkout", rev)
	return err
}

// Describe resolves the current descriptive tag, falling back to the
// abbreviated hash when no tag reaches the head.
func Describe(ctx context.Context, r Runner, dir string) (string, error) {
	return r.Run(ctx, dir, "describe", "--tags", "--always")
}

// LocalChanges returns the porcelain status of dir, ignoring nested
// submodules and untracked files. Empty output means a clean tree.
func LocalChanges(ctx context.Context, r Runner, dir string) (string, error) {
	return r.Run(ctx, dir, "status", "--porcelain", "--ignore-submodules", "-uno")
}

// RemoteAdd registers a new remote.
func RemoteAdd(ctx context.Context, r Runner, dir, name, url string) error {
	_, err := r.Run(ctx, dir, "remote", "add", name, url)
	return err
}

// Remotes lists the configured remotes (fetch direction).
func Remotes(ctx context.Context, r Runner, dir string) ([]Remote, error) {
	out, err := r.Run(ctx, dir, "remote", "-v")
	if err != nil {
		return nil, err
	}
	var remotes []Remote
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[2] != "(fetch)" {
			continue
		}
		remotes = append(remotes, Remote{Name: fields[0], URL: fields[1]})
	}
	return remotes, nil
}

// ConfigGet reads a config key. An unset key is expected absence, not an
// error: it is reported as ok == false. Any other failure propagates.
func ConfigGet(ctx context.Context, r Runner, dir, key string) (value string, ok bool, err error) {
	out, err := r.Run(ctx, dir, "config", "--get", key)
	if err != nil {
		var opErr *OpError
		if errors.As(err, &opErr) && opErr.Code == 1 && opErr.Output == "" {
			return "", false, nil
		}
		return "", false, err
	}
	return out, true, nil
}

// ConfigSet writes a config key.
func ConfigSet(ctx context.Context, r Runner, dir, key, value string) error {
	_, err := r.Run(ctx, dir, "config", key, value)
	return err
}

// SuperprojectDir returns the working tree of the superproject containing
// dir, or "" when dir is not inside a superproject checkout.
func SuperprojectDir(ctx context.Context, r Runner, dir string) (string, error) {
	return r.Run(ctx, dir, "rev-parse", "--show-superproject-working-tree")
}

// SubmoduleIndexHash returns the commit the superproject at dir records
// for the submodule path, as reported by `git submodule status`. Status
// markers (-, +, U) are stripped.
func SubmoduleIndexHash(ctx context.Context, r Runner, dir, path string) (string, error) {
	out, err := r.Run(ctx, dir, "submodule", "status", "--", path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.TrimLeft(fields[0], "-+U"), nil
}

// SubmoduleUpdateInit initializes and updates one submodule path.
func SubmoduleUpdateInit(ctx context.Context, r Runner, dir, path string) error {
	_, err := r.Run(ctx, dir, "submodule", "update", "--init", "--", path)
	return err
}

// HeadHash resolves the commit hash the working tree is at.
func HeadHash(ctx context.Context, r Runner, dir string) (string, error) {
	return r.Run(ctx, dir, "rev-parse", "HEAD")
}

// LsRemoteTags lists the tag refs of a remote url.
func LsRemoteTags(ctx context.Context, r Runner, dir, url string) ([]RemoteTag, error) {
	out, err := r.Run(ctx, dir, "ls-remote", "--tags", url)
	if err != nil {
		return nil, err
	}
	var tags []RemoteTag
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		tags = append(tags, RemoteTag{Hash: fields[0], Ref: fields[1]})
	}
	return tags, nil
}

// RemoteURL returns the fetch url of the default remote of dir.
func RemoteURL(ctx context.Context, r Runner, dir string) (string, error) {
	return r.Run(ctx, dir, "ls-remote", "--get-url")
}

// Tags lists the locally known tag names.
func Tags(ctx context.Context, r Runner, dir string) ([]string, error) {
	out, err := r.Run(ctx, dir, "tag", "-l")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// FetchTags fetches from the named remote, tags included.
func FetchTags(ctx context.Context, r Runner, dir, remote string) error {
	_, err := r.Run(ctx, dir, "fetch", remote, "--tags")
	return err
}

// FetchShallowTags fetches at depth 1 from the named remote, tags
// included. Used by the sparse installer to materialize only the pinned
// revision.
func FetchShallowTags(ctx context.Context, r Runner, dir, remote string) error {
	_, err := r.Run(ctx, dir, "fetch", "--depth=1", remote, "--tags")
	return err
}
