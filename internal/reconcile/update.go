// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"fxmod-cli/internal/manifest"
	"fxmod-cli/internal/vcs"
)

// Update brings every present, in-scope submodule to its pinned tag. A
// drifted remote url is repaired by adding a dedicated remote rather than
// mutating origin. An unset pin is reported, not an error.
func (e *Engine) Update(ctx context.Context, man *manifest.Manifest, tiers manifest.TierSet) error {
	for _, entry := range man.Entries {
		if !tiers.Contains(entry.Tier) {
			if entry.Tier == manifest.TopOptional {
				fmt.Fprintf(e.out, "Skipping optional component %s\n", entry.Name)
			}
			continue
		}
		repoDir := filepath.Join(man.Dir, entry.Path)
		if !hasGitMarker(repoDir) {
			continue
		}
		if _, err := e.updateEntry(ctx, entry, repoDir); err != nil {
			return err
		}
	}
	return nil
}

// updateEntry moves one checked-out submodule to its pin.
func (e *Engine) updateEntry(ctx context.Context, entry manifest.Entry, repoDir string) (Outcome, error) {
	remote, err := e.resolveRemote(ctx, entry, repoDir)
	if err != nil {
		return Failed, err
	}

	if entry.FxTag == "" {
		fmt.Fprintf(e.out, "No fxtag found for submodule %s\n", entry.Name)
		return UpToDate, nil
	}

	known, err := vcs.Tags(ctx, e.git, repoDir)
	if err != nil {
		return Failed, err
	}
	if !slices.Contains(known, entry.FxTag) {
		if err := vcs.FetchTags(ctx, e.git, repoDir, remote); err != nil {
			return Failed, err
		}
	}

	atTag, err := vcs.Describe(ctx, e.git, repoDir)
	if err != nil {
		return Failed, err
	}
	if atTag == entry.FxTag {
		fmt.Fprintf(e.out, "%20s up to date.\n", entry.Name)
		return UpToDate, nil
	}

	if err := vcs.Checkout(ctx, e.git, repoDir, entry.FxTag); err != nil {
		return Failed, err
	}
	fmt.Fprintf(e.out, "%20s updated to %s\n", entry.Name, entry.FxTag)
	return Updated, nil
}

// resolveRemote returns the name of a remote pointing at the manifest's
// url. When the configured remote has drifted (a fork, say), an existing
// matching remote is reused; otherwise a new one named after the url is
// added, with a numeric suffix on collision. origin is never rewritten.
func (e *Engine) resolveRemote(ctx context.Context, entry manifest.Entry, repoDir string) (string, error) {
	current, err := vcs.RemoteURL(ctx, e.git, repoDir)
	if err != nil {
		return "", err
	}
	if current == entry.URL {
		return "origin", nil
	}

	e.log.Info("remote url drifted", "submodule", entry.Name, "configured", current, "manifest", entry.URL)
	remotes, err := vcs.Remotes(ctx, e.git, repoDir)
	if err != nil {
		return "", err
	}
	for _, r := range remotes {
		if r.URL == entry.URL {
			return r.Name, nil
		}
	}

	name := remoteNameFor(entry.URL, remotes)
	if err := vcs.RemoteAdd(ctx, e.git, repoDir, name, entry.URL); err != nil {
		return "", err
	}
	return name, nil
}

// remoteNameFor derives a remote name from the url's last path element,
// appending a numeric suffix until it is free.
func remoteNameFor(url string, taken []vcs.Remote) string {
	base := strings.TrimSuffix(path.Base(url), ".git")
	if base == "" || base == "." || base == "/" {
		base = "newremote"
	}

	used := func(name string) bool {
		for _, r := range taken {
			if r.Name == name {
				return true
			}
		}
		return false
	}

	name := base
	for i := 1; used(name); i++ {
		name = fmt.Sprintf("%s.%02d", base, i)
	}
	return name
}
