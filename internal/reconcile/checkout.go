// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fxmod-cli/internal/manifest"
	"fxmod-cli/internal/vcs"
)

// work is one unit of the checkout worklist: a manifest scoped to a
// subtree and the tier set it is reconciled with.
type work struct {
	man   *manifest.Manifest
	tiers manifest.TierSet
}

// Checkout reconciles every entry of man in declared order. Nested
// manifests found inside freshly checked-out submodules are appended to
// the worklist and reconciled with the internal-required tier set only.
// The first fatal error terminates the run.
func (e *Engine) Checkout(ctx context.Context, man *manifest.Manifest, tiers manifest.TierSet) error {
	queue := []work{{man: man, tiers: tiers}}
	for len(queue) > 0 {
		w := queue[0]
		queue = queue[1:]

		for _, entry := range w.man.Entries {
			outcome, err := e.checkoutEntry(ctx, w.man, entry, w.tiers)
			if err != nil {
				return err
			}
			if outcome != CheckedOut {
				continue
			}

			subDir := filepath.Join(w.man.Dir, entry.Path)
			if _, err := os.Stat(filepath.Join(subDir, w.man.FileName)); err != nil {
				continue
			}
			fmt.Fprintf(e.out, "Recursively checking out submodules of %s\n", entry.Name)
			nested, err := manifest.Load(subDir, w.man.FileName, nil, nil)
			if err != nil {
				return err
			}
			queue = append(queue, work{man: nested, tiers: manifest.NestedTiers()})
		}
	}
	return nil
}

// checkoutEntry classifies one entry and executes the matching
// transition.
func (e *Engine) checkoutEntry(ctx context.Context, man *manifest.Manifest, entry manifest.Entry, tiers manifest.TierSet) (Outcome, error) {
	if !tiers.Contains(entry.Tier) {
		if entry.Tier == manifest.TopOptional {
			// Deliberate no-op, not an error. Keep it visible.
			fmt.Fprintf(e.out, "Skipping optional component %s\n", entry.Name)
		}
		e.log.Debug("out of scope", "submodule", entry.Name, "tier", entry.Tier)
		return Skipped, nil
	}

	repoDir := filepath.Join(man.Dir, entry.Path)
	if hasGitMarker(repoDir) {
		e.log.Info("already checked out", "submodule", entry.Name)
		return Present, nil
	}

	e.log.Info("checking out", "submodule", entry.Name, "path", repoDir)
	switch {
	case entry.Sparse != "":
		inst := &sparseInstaller{git: e.git, log: e.log, out: e.out}
		if err := inst.install(ctx, man.Dir, entry); err != nil {
			return Failed, err
		}
	default:
		if err := e.fullCheckout(ctx, man, entry, repoDir); err != nil {
			return Failed, err
		}
	}

	if !hasGitMarker(repoDir) {
		return Failed, &PostconditionError{Name: entry.Name, Path: repoDir}
	}
	return CheckedOut, nil
}

// fullCheckout materializes a complete working tree. Standard HTTPS
// remotes go through the submodule machinery; SSH-form remotes are
// cloned with an HTTPS-equivalent url since the invoking environment may
// lack SSH credentials.
func (e *Engine) fullCheckout(ctx context.Context, man *manifest.Manifest, entry manifest.Entry, repoDir string) error {
	if httpsURL, ssh := httpsEquivalent(entry.URL); ssh {
		return e.substitutedClone(ctx, man, entry, httpsURL, repoDir)
	}
	return vcs.SubmoduleUpdateInit(ctx, e.git, man.Dir, entry.Path)
}

// substitutedClone clones with the HTTPS-equivalent url after rewriting
// the manifest on disk, and restores the manifest to its original bytes
// before returning. The substitution must never persist, so the restore
// runs on the success path too.
func (e *Engine) substitutedClone(ctx context.Context, man *manifest.Manifest, entry manifest.Entry, httpsURL, repoDir string) (err error) {
	if err := man.SetURL(entry.Name, httpsURL); err != nil {
		return err
	}
	defer func() {
		if rerr := man.Restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := vcs.Clone(ctx, e.git, man.Dir, httpsURL, entry.Path); err != nil {
		return err
	}

	tag := entry.FxTag
	if tag == "" {
		tag, err = vcs.Describe(ctx, e.git, repoDir)
		if err != nil {
			return err
		}
	}
	return vcs.Checkout(ctx, e.git, repoDir, tag)
}
