// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fxmod-cli/internal/manifest"
	"fxmod-cli/internal/vcs"
)

// Verify compares working-tree tags and remote urls against the manifest
// without mutating state and returns the aggregate failure count. Test
// mode additionally requires url == fxurl and, for sparse entries, that
// the installed path-spec file exists. Verification failures never stop
// the run; every in-scope entry is evaluated.
func (e *Engine) Verify(ctx context.Context, man *manifest.Manifest, tiers manifest.TierSet, testMode bool) (int, error) {
	failures := 0
	for _, entry := range man.Entries {
		if !tiers.Contains(entry.Tier) {
			continue
		}

		repoDir := filepath.Join(man.Dir, entry.Path)
		var (
			failed bool
			err    error
		)
		if hasGitMarker(repoDir) {
			failed, err = e.verifyPresent(ctx, entry, repoDir, testMode)
		} else {
			failed, err = e.verifyAbsent(ctx, man, entry, testMode)
		}
		if err != nil {
			return failures, err
		}
		if failed {
			failures++
		}

		if testMode {
			failures += e.verifyDeclaration(man, entry)
		}
	}
	return failures, nil
}

// verifyAbsent classifies an entry with no working tree: the commit the
// superproject records for its path is matched against the remote's tag
// list.
func (e *Engine) verifyAbsent(ctx context.Context, man *manifest.Manifest, entry manifest.Entry, testMode bool) (bool, error) {
	optional := ""
	if entry.Tier == manifest.TopOptional {
		optional = " (optional)"
	}

	if entry.FxTag == "" {
		fmt.Fprintf(e.out, "e %20s has no fxtag defined%s\n", entry.Name, optional)
		return testMode, nil
	}

	indexHash, err := vcs.SubmoduleIndexHash(ctx, e.git, man.Dir, entry.Path)
	if err != nil {
		return false, err
	}

	// ls-remote needs no credentials over https.
	url := entry.URL
	if httpsURL, ssh := httpsEquivalent(url); ssh {
		url = httpsURL
	}
	remoteTags, err := vcs.LsRemoteTags(ctx, e.git, man.Dir, url)
	if err != nil {
		return false, err
	}

	indexTag := "" // nearest tag of the recorded commit
	pinHash := "" // commit the pinned tag points at
	for _, rt := range remoteTags {
		tag := strings.TrimSuffix(rt.Tag(), "^{}")
		if tag == "" {
			continue
		}
		// An annotated tag is listed twice: the plain ref carries the
		// tag-object hash, the peeled ref the commit hash. The index
		// records commits, so the peeled line wins.
		if tag == entry.FxTag && (pinHash == "" || rt.Peeled()) {
			pinHash = rt.Hash
		}
		if indexTag == "" && indexHash != "" && rt.Hash == indexHash {
			indexTag = tag
		}
	}

	switch {
	case indexTag == entry.FxTag && indexTag != "":
		fmt.Fprintf(e.out, "e %20s not checked out, aligned at tag %s%s\n", entry.Name, entry.FxTag, optional)
		return false, nil
	case pinHash != "" && pinHash == indexHash:
		fmt.Fprintf(e.out, "e %20s not checked out, aligned at hash %s%s\n", entry.Name, indexHash, optional)
		return false, nil
	default:
		fmt.Fprintf(e.out, "e %20s not checked out, out of sync at tag %s, expected tag is %s%s\n", entry.Name, indexTag, entry.FxTag, optional)
		return true, nil
	}
}

// verifyPresent classifies an entry with a working tree by its
// descriptive tag. Uncommitted local changes are surfaced indented but
// never counted.
func (e *Engine) verifyPresent(ctx context.Context, entry manifest.Entry, repoDir string, testMode bool) (bool, error) {
	atTag, err := vcs.Describe(ctx, e.git, repoDir)
	if err != nil {
		return false, err
	}
	atHash, err := vcs.HeadHash(ctx, e.git, repoDir)
	if err != nil {
		return false, err
	}

	failed := false
	switch {
	case entry.FxTag != "" && atTag == entry.FxTag:
		fmt.Fprintf(e.out, "  %20s at tag %s\n", entry.Name, entry.FxTag)
	case entry.FxTag != "" && strings.HasPrefix(atHash, entry.FxTag):
		// The pin is a commit-ish, not a tag.
		fmt.Fprintf(e.out, "  %20s at hash %s\n", entry.Name, atHash)
	case entry.FxTag == "":
		fmt.Fprintf(e.out, "e %20s has no fxtag defined, module at %s\n", entry.Name, atTag)
		failed = testMode
	default:
		fmt.Fprintf(e.out, "s %20s %s is out of sync with required tag %s\n", entry.Name, atTag, entry.FxTag)
		failed = true
	}

	changes, err := vcs.LocalChanges(ctx, e.git, repoDir)
	if err != nil {
		return failed, err
	}
	if changes != "" {
		fmt.Fprintf(e.out, "M %20s has uncommitted changes:\n", entry.Name)
		for _, line := range strings.Split(changes, "\n") {
			fmt.Fprintf(e.out, "      %s\n", line)
		}
	}
	return failed, nil
}

// verifyDeclaration checks the manifest entry itself: the configured url
// must match the canonical one, and a declared sparse path-spec must
// exist on disk. Returns the number of counted failures.
func (e *Engine) verifyDeclaration(man *manifest.Manifest, entry manifest.Entry) int {
	failures := 0
	if entry.FxURL == "" || normalizeURL(entry.URL) != normalizeURL(entry.FxURL) {
		fmt.Fprintf(e.out, "%20s url %s not in sync with required %s\n", entry.Name, entry.URL, entry.FxURL)
		failures++
	}
	if entry.Sparse != "" {
		spec := filepath.Join(man.Dir, entry.Path, entry.Sparse)
		if _, err := os.Stat(spec); err != nil {
			fmt.Fprintf(e.out, "%20s sparse checkout file %s not found\n", entry.Name, entry.Sparse)
			failures++
		}
	}
	return failures
}
