// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fxmod-cli/internal/manifest"
	"fxmod-cli/internal/vcs"

	"github.com/charmbracelet/log"
)

// sparseInstaller materializes a submodule whose working tree should hold
// only a restricted path set, while still appearing as a normal nested
// repository to the superproject. The nontrivial part is relocating the
// submodule's metadata directory into the superproject's store and
// leaving a gitdir link behind, a prerequisite for safely pruning files
// via sparse-checkout.
type sparseInstaller struct {
	git vcs.Runner
	log *log.Logger
	out io.Writer
}

// sparsePlan is the precomputed surgery: every path the install phase
// touches, derived without side effects.
type sparsePlan struct {
	// repoDir is the absolute submodule working tree.
	repoDir string
	// gitPath is repoDir/.git, directory before relocation and link file
	// after.
	gitPath string
	// store is the dedicated metadata directory for this submodule under
	// the superproject's store.
	store string
	// specSrc is the absolute path of the declared path-spec file.
	specSrc string
	// specSlot is the sparse-checkout configuration slot inside store.
	specSlot string
}

// plan computes the surgery for entry anchored at root. It accounts for
// root itself being a linked working tree (gitdir link file) rather than
// a primary repository.
func (in *sparseInstaller) plan(ctx context.Context, root string, entry manifest.Entry) (*sparsePlan, error) {
	repoDir := filepath.Join(root, entry.Path)

	super, err := vcs.SuperprojectDir(ctx, in.git, root)
	if err != nil {
		return nil, err
	}
	gitRoot := root
	if super != "" {
		gitRoot = super
	}

	store := filepath.Join(gitRoot, ".git", "modules", entry.Name)
	rootMarker := filepath.Join(root, ".git")
	if gitRoot != root {
		if fi, err := os.Stat(rootMarker); err == nil && fi.Mode().IsRegular() {
			target, err := readGitDirLink(rootMarker)
			if err != nil {
				return nil, err
			}
			store = filepath.Join(target, "modules", entry.Name)
		}
	}

	return &sparsePlan{
		repoDir:  repoDir,
		gitPath:  filepath.Join(repoDir, ".git"),
		store:    store,
		specSrc:  filepath.Join(repoDir, entry.Sparse),
		specSlot: filepath.Join(store, "info", "sparse-checkout"),
	}, nil
}

// install commits the plan. Both idempotence guards are honored: an
// already-enabled sparse-checkout flag and an already-populated path-spec
// slot each end the installation without fetching. A filesystem move
// failure or missing path-spec is fatal for the submodule; partially
// relocated metadata is left for manual recovery.
func (in *sparseInstaller) install(ctx context.Context, root string, entry manifest.Entry) error {
	if entry.FxTag == "" {
		return fmt.Errorf("sparse submodule %s has no fxtag to check out", entry.Name)
	}

	p, err := in.plan(ctx, root, entry)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.repoDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", p.repoDir, err)
	}
	if _, err := os.Stat(p.gitPath); err != nil {
		if err := vcs.Init(ctx, in.git, p.repoDir); err != nil {
			return err
		}
	}

	if flag, ok, err := vcs.ConfigGet(ctx, in.git, p.repoDir, "core.sparseCheckout"); err != nil {
		return err
	} else if ok && flag == "true" {
		in.log.Warn("sparse checkout already installed", "submodule", entry.Name, "path", p.repoDir)
		return nil
	}

	if err := vcs.ConfigSet(ctx, in.git, p.repoDir, "core.sparseCheckout", "true"); err != nil {
		return err
	}
	if err := vcs.RemoteAdd(ctx, in.git, p.repoDir, "origin", entry.URL); err != nil {
		return err
	}

	if fi, err := os.Stat(p.gitPath); err == nil && fi.IsDir() {
		if err := relocateMetadata(p.gitPath, p.store); err != nil {
			return err
		}
	}

	if _, err := os.Stat(p.specSlot); err == nil {
		// Never overwrite an existing spec: installation already done.
		in.log.Warn("path-spec already installed", "submodule", entry.Name, "slot", p.specSlot)
		return nil
	}
	if err := copySpec(p.specSrc, p.specSlot); err != nil {
		return err
	}

	if err := vcs.FetchShallowTags(ctx, in.git, p.repoDir, "origin"); err != nil {
		return err
	}
	if err := vcs.Checkout(ctx, in.git, p.repoDir, entry.FxTag); err != nil {
		return err
	}

	fmt.Fprintf(in.out, "Sparse checkout of %s at %s\n", entry.Name, entry.FxTag)
	return nil
}

// relocateMetadata moves the metadata directory at gitPath into store and
// replaces it with a gitdir link file pointing back at store.
func relocateMetadata(gitPath, store string) error {
	if _, err := os.Stat(store); err == nil {
		return fmt.Errorf("metadata store %s already exists, refusing to overwrite", store)
	}
	if err := os.MkdirAll(filepath.Dir(store), 0o755); err != nil {
		return fmt.Errorf("create store parent for %s: %w", store, err)
	}
	if err := os.Rename(gitPath, store); err != nil {
		return fmt.Errorf("relocate metadata %s -> %s: %w", gitPath, store, err)
	}

	repoDir := filepath.Dir(gitPath)
	rel, err := filepath.Rel(repoDir, store)
	if err != nil {
		rel = store
	}
	link := "gitdir: " + rel + "\n"
	if err := os.WriteFile(gitPath, []byte(link), 0o644); err != nil {
		return fmt.Errorf("write gitdir link %s: %w", gitPath, err)
	}
	return nil
}

// copySpec copies the declared path-spec file into the sparse-checkout
// slot.
func copySpec(src, slot string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read sparse path-spec %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(slot), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(slot), err)
	}
	if err := os.WriteFile(slot, data, 0o644); err != nil {
		return fmt.Errorf("install sparse path-spec %s: %w", slot, err)
	}
	return nil
}

// readGitDirLink resolves the target of a gitdir link file. Relative
// targets resolve against the link's directory.
func readGitDirLink(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read gitdir link %s: %w", path, err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	target, found := strings.CutPrefix(line, "gitdir: ")
	if !found {
		return "", fmt.Errorf("%s is not a gitdir link", path)
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}
