package cargo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the name of the cargo manifest.
const ManifestFile = "Cargo.toml"

// ErrNoManifest is returned when a folder has no Cargo.toml.
var ErrNoManifest = errors.New("no " + ManifestFile + " found")

type rawManifest struct {
	Package *struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"` // A string, or a table when inherited from the workspace
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// Manifest is the part of Cargo.toml apollo cares about.
type Manifest struct {
	Dir     string
	Name    string // Package name, empty for a virtual workspace
	Version string
	// Members are workspace member directories relative to Dir, with globs expanded.
	Members     []string
	IsWorkspace bool
}

// Label returns the package name, or the folder name for virtual workspaces.
func (m *Manifest) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return filepath.Base(m.Dir)
}

// ReadManifest parses dir/Cargo.toml.
func ReadManifest(dir string) (*Manifest, error) {
	// #nosec G304 -- dir is a folder picked by the user
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNoManifest)
		}
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}

	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}

	m := &Manifest{Dir: dir}
	if raw.Package != nil {
		m.Name = raw.Package.Name
		if v, ok := raw.Package.Version.(string); ok {
			m.Version = v
		}
	}
	if raw.Workspace != nil {
		m.IsWorkspace = true
		m.Members = expandMembers(os.DirFS(dir), raw.Workspace.Members, raw.Workspace.Exclude)
	}
	if raw.Package == nil && raw.Workspace == nil {
		return nil, fmt.Errorf("%s has neither [package] nor [workspace]", ManifestFile)
	}
	return m, nil
}

// expandMembers resolves member globs to directories holding a Cargo.toml.
func expandMembers(fsys fs.FS, members, exclude []string) []string {
	var out []string
	for _, pattern := range members {
		pattern = path.Clean(filepath.ToSlash(pattern))
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			if excluded(match, exclude) || slices.Contains(out, match) {
				continue
			}
			if _, err := fs.Stat(fsys, path.Join(match, ManifestFile)); err != nil {
				continue
			}
			out = append(out, match)
		}
	}
	slices.Sort(out)
	return out
}

func excluded(member string, exclude []string) bool {
	for _, pattern := range exclude {
		pattern = path.Clean(filepath.ToSlash(pattern))
		if ok, err := doublestar.Match(pattern, member); err == nil && ok {
			return true
		}
	}
	return false
}
