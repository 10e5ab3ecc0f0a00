// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fxmod-cli/internal/manifest"
)

const verifyManifest = "[submodule \"e\"]\n\tpath = components/e\n\turl = https://upstream/x\n\tfxurl = https://upstream/x\n\tfxtag = v2.0\n\tfxrequired = T:T\n"

func TestVerify_AbsentAlignedAtTag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	man := loadTestManifest(t, dir, verifyManifest)
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "submodule status -- components/e":
			return "-abc123 components/e", nil
		case "ls-remote --tags https://upstream/x":
			return "abc123\trefs/tags/v2.0", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if failures != 0 {
		t.Errorf("aligned entry must not count as failure, got %d", failures)
	}
	if !strings.Contains(out.String(), "aligned at tag v2.0") {
		t.Errorf("expected an aligned report, got %q", out.String())
	}
}

func TestVerify_AbsentAlignedAtAnnotatedTag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	man := loadTestManifest(t, dir, verifyManifest)
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "submodule status -- components/e":
			return "-abc123 components/e", nil
		case "ls-remote --tags https://upstream/x":
			// Annotated tag: the plain ref carries the tag-object hash,
			// the peeled ref the commit hash the index records.
			return "tagobj99\trefs/tags/v2.0\nabc123\trefs/tags/v2.0^{}", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if failures != 0 {
		t.Errorf("annotated-tag pin must classify as aligned, got %d failures", failures)
	}
	if !strings.Contains(out.String(), "aligned at tag v2.0") {
		t.Errorf("expected an aligned report, got %q", out.String())
	}
}

func TestVerify_AbsentUnsetPinFailsOnlyInTestMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	unpinned := "[submodule \"e\"]\n\tpath = components/e\n\turl = https://upstream/x\n\tfxurl = https://upstream/x\n\tfxrequired = T:T\n"
	man := loadTestManifest(t, dir, unpinned)
	git := &fakeGit{t: t}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify (status): %v", err)
	}
	if failures != 0 {
		t.Errorf("status mode treats an unset pin as informational, got %d failures", failures)
	}
	if !strings.Contains(out.String(), "no fxtag") {
		t.Errorf("expected an informational no-pin line, got %q", out.String())
	}

	failures, err = engine.Verify(context.Background(), man, manifest.OptionalTiers(), true)
	if err != nil {
		t.Fatalf("Verify (test): %v", err)
	}
	if failures != 1 {
		t.Errorf("test mode counts an unset pin, got %d failures", failures)
	}
}

func TestVerify_AbsentOutOfSync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	man := loadTestManifest(t, dir, verifyManifest)
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "submodule status -- components/e":
			return "-def456 components/e", nil
		case "ls-remote --tags https://upstream/x":
			return "abc123\trefs/tags/v2.0\nabc123\trefs/tags/v2.0^{}", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if failures != 1 {
		t.Errorf("expected one counted failure, got %d", failures)
	}
	if !strings.Contains(out.String(), "out of sync") || !strings.Contains(out.String(), "v2.0") {
		t.Errorf("expected an out-of-sync report naming the pin, got %q", out.String())
	}
}

func TestVerify_PresentMismatchNamesBothTags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	man := loadTestManifest(t, dir, verifyManifest)
	mkGitDir(t, filepath.Join(dir, "components", "e"))
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "describe --tags --always":
			return "v1.9", nil
		case "rev-parse HEAD":
			return "aaaa111", nil
		case "status --porcelain --ignore-submodules -uno":
			return "", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if failures != 1 {
		t.Errorf("expected one counted failure, got %d", failures)
	}
	report := out.String()
	if !strings.Contains(report, "v1.9") || !strings.Contains(report, "v2.0") {
		t.Errorf("diagnostic must name both tags, got %q", report)
	}
}

func TestVerify_LocalChangesSurfacedNotCounted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	man := loadTestManifest(t, dir, verifyManifest)
	mkGitDir(t, filepath.Join(dir, "components", "e"))
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "describe --tags --always":
			return "v2.0", nil
		case "rev-parse HEAD":
			return "abc123", nil
		case "status --porcelain --ignore-submodules -uno":
			return " M src/core.c", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if failures != 0 {
		t.Errorf("local changes must not count as failure, got %d", failures)
	}
	if !strings.Contains(out.String(), "uncommitted changes") || !strings.Contains(out.String(), "M src/core.c") {
		t.Errorf("expected an indented local-changes diagnostic, got %q", out.String())
	}
}

func TestVerify_URLDriftCountedInTestModeOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	drifted := "[submodule \"e\"]\n\tpath = components/e\n\turl = https://fork/x\n\tfxurl = https://upstream/x\n\tfxtag = v2.0\n\tfxrequired = T:T\n"
	man := loadTestManifest(t, dir, drifted)
	mkGitDir(t, filepath.Join(dir, "components", "e"))
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "describe --tags --always":
			return "v2.0", nil
		case "rev-parse HEAD":
			return "abc123", nil
		case "status --porcelain --ignore-submodules -uno":
			return "", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify (status): %v", err)
	}
	if failures != 0 {
		t.Errorf("status mode must not count url drift, got %d", failures)
	}

	failures, err = engine.Verify(context.Background(), man, manifest.OptionalTiers(), true)
	if err != nil {
		t.Fatalf("Verify (test): %v", err)
	}
	if failures != 1 {
		t.Errorf("test mode must count url drift once, got %d", failures)
	}
	report := out.String()
	if !strings.Contains(report, "https://fork/x") || !strings.Contains(report, "https://upstream/x") {
		t.Errorf("diagnostic must name both urls, got %q", report)
	}
}

func TestVerify_UnsetPinFailsOnlyInTestMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	unpinned := "[submodule \"e\"]\n\tpath = components/e\n\turl = https://upstream/x\n\tfxurl = https://upstream/x\n\tfxrequired = T:T\n"
	man := loadTestManifest(t, dir, unpinned)
	mkGitDir(t, filepath.Join(dir, "components", "e"))
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "describe --tags --always":
			return "g1234abc", nil
		case "rev-parse HEAD":
			return "1234abcd", nil
		case "status --porcelain --ignore-submodules -uno":
			return "", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), false)
	if err != nil {
		t.Fatalf("Verify (status): %v", err)
	}
	if failures != 0 {
		t.Errorf("status mode treats an unset pin as informational, got %d failures", failures)
	}
	if !strings.Contains(out.String(), "no fxtag") {
		t.Errorf("expected an informational no-pin line, got %q", out.String())
	}

	failures, err = engine.Verify(context.Background(), man, manifest.OptionalTiers(), true)
	if err != nil {
		t.Fatalf("Verify (test): %v", err)
	}
	if failures != 1 {
		t.Errorf("test mode counts an unset pin, got %d failures", failures)
	}
}

func TestVerify_MissingSparseSpecCountedInTestMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sparse := "[submodule \"e\"]\n\tpath = components/e\n\turl = https://upstream/x\n\tfxurl = https://upstream/x\n\tfxtag = v2.0\n\tfxrequired = T:T\n\tfxsparse = .sparse\n"
	man := loadTestManifest(t, dir, sparse)
	mkGitDir(t, filepath.Join(dir, "components", "e"))
	git := &fakeGit{t: t}
	git.handler = func(_ string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "describe --tags --always":
			return "v2.0", nil
		case "rev-parse HEAD":
			return "abc123", nil
		case "status --porcelain --ignore-submodules -uno":
			return "", nil
		}
		t.Fatalf("unexpected git call: %v", args)
		return "", nil
	}
	engine, out := newTestEngine(git)

	failures, err := engine.Verify(context.Background(), man, manifest.OptionalTiers(), true)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if failures != 1 {
		t.Errorf("expected one counted failure for the missing path-spec, got %d", failures)
	}
	if !strings.Contains(out.String(), "sparse checkout file") {
		t.Errorf("expected a missing path-spec diagnostic, got %q", out.String())
	}
}
