// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// DefaultFileName is the manifest filename used when none is configured.
const DefaultFileName = ".gitmodules"

// Entry is one declared submodule.
type Entry struct {
	// Name is the subsection name and the unique key within a manifest.
	Name string
	// Path is the working-tree-relative location of the submodule.
	Path string
	// URL is the configured remote.
	URL string
	// FxURL is the canonical remote, used to detect fork drift. Optional.
	FxURL string
	// FxTag is the pinned revision (tag, branch or commit-ish). Optional.
	FxTag string
	// Tier controls when the entry is acted on.
	Tier Tier
	// Sparse names a sparse path-spec file relative to the submodule
	// root. Empty means full checkout.
	Sparse string
}

// Manifest is an ordered collection of entries loaded from one file.
type Manifest struct {
	// Dir is the directory the manifest was found in. Entry paths are
	// relative to it.
	Dir string
	// FileName is the bare manifest filename, reused when loading nested
	// manifests.
	FileName string
	// Path is the absolute path of the manifest file.
	Path string
	// Entries in declared order.
	Entries []Entry

	// raw is the on-disk content at load time, backing byte-exact Restore.
	raw []byte
}

// Load reads the manifest named fileName starting at root, walking up the
// ancestor directories until the file is found. Entries named in exclude
// are dropped; when include is non-empty only the named entries are kept.
// A missing file or an entry missing a mandatory attribute is a
// *ConfigError.
func Load(root, fileName string, include, exclude []string) (*Manifest, error) {
	dir, path, err := locate(root, fileName)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("cannot read manifest: %v", err)}
	}

	cfg := format.New()
	if err := format.NewDecoder(bytes.NewReader(raw)).Decode(cfg); err != nil {
		return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("cannot parse manifest: %v", err)}
	}

	m := &Manifest{
		Dir:      dir,
		FileName: fileName,
		Path:     path,
		raw:      raw,
	}

	seen := map[string]string{} // path -> entry name
	for _, sub := range cfg.Section("submodule").Subsections {
		name := sub.Name
		if slices.Contains(exclude, name) {
			continue
		}
		if len(include) > 0 && !slices.Contains(include, name) {
			continue
		}

		e := Entry{
			Name:   name,
			Path:   sub.Option("path"),
			URL:    sub.Option("url"),
			FxURL:  sub.Option("fxurl"),
			FxTag:  sub.Option("fxtag"),
			Tier:   Tier(sub.Option("fxrequired")),
			Sparse: sub.Option("fxsparse"),
		}

		switch {
		case e.Path == "":
			return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("submodule %q has no path", name)}
		case e.URL == "":
			return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("submodule %q has no url", name)}
		case !e.Tier.Valid():
			return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("submodule %q has invalid fxrequired %q", name, sub.Option("fxrequired"))}
		}
		if prev, dup := seen[e.Path]; dup {
			return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("submodules %q and %q share path %q", prev, name, e.Path)}
		}
		seen[e.Path] = name

		m.Entries = append(m.Entries, e)
	}

	return m, nil
}

// locate walks from root toward the filesystem root looking for fileName.
func locate(root, fileName string) (dir, path string, err error) {
	dir, err = filepath.Abs(root)
	if err != nil {
		return "", "", &ConfigError{Path: root, Msg: fmt.Sprintf("cannot resolve root: %v", err)}
	}
	for {
		path = filepath.Join(dir, fileName)
		if _, serr := os.Stat(path); serr == nil {
			return dir, path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", &ConfigError{Path: fileName, Msg: fmt.Sprintf("manifest %s not found in %s or any parent directory", fileName, root)}
		}
		dir = parent
	}
}

// Entry returns the entry with the given name.
func (m *Manifest) Entry(name string) (*Entry, bool) {
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// SetURL rewrites the url of the named submodule in the manifest file on
// disk. The rewrite is transient: callers must pair it with Restore once
// the checkout that needed it has completed.
func (m *Manifest) SetURL(name, url string) error {
	cfg := format.New()
	if err := format.NewDecoder(bytes.NewReader(m.raw)).Decode(cfg); err != nil {
		return fmt.Errorf("reparse manifest %s: %w", m.Path, err)
	}
	cfg.Section("submodule").Subsection(name).SetOption("url", url)

	var buf bytes.Buffer
	if err := format.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode manifest %s: %w", m.Path, err)
	}
	if err := os.WriteFile(m.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("rewrite manifest %s: %w", m.Path, err)
	}
	return nil
}

// Restore writes the manifest file back to its content at load time,
// byte for byte.
func (m *Manifest) Restore() error {
	if err := os.WriteFile(m.Path, m.raw, 0o644); err != nil {
		return fmt.Errorf("restore manifest %s: %w", m.Path, err)
	}
	return nil
}
